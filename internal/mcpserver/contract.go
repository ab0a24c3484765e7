package mcpserver

// LibraryFormatContract describes the Markdown prompt files the library
// importer understands. LLM consumers should follow it when writing files
// into the library directory.
const LibraryFormatContract = `# Promptloom Library Format

Every prompt file in the library directory is one Markdown document.

## Structure

` + "```" + `markdown
---
title: Review a pull request          # OPTIONAL, falls back to the first H1, then the file name
category: "Utility: Code Review"      # OPTIONAL, created on import when missing
tags:                                 # OPTIONAL, YAML list or comma-separated string
  - review
  - code
---

The prompt text. Everything after the frontmatter becomes the prompt content.
` + "```" + `

## Rules

1. **Files end with ` + "`" + `.md` + "`" + `.** Other files and hidden entries are ignored.
2. **Frontmatter is optional** but, when present, the ` + "```" + `---` + "```" + ` fences must be the
   first thing in the file.
3. **Title** needs at least 3 characters. A leading ` + "`" + `# Heading` + "`" + ` is used as the title when
   frontmatter has none, and is removed from the content.
4. **Content** needs at least 5 characters. Files that fail validation are skipped and logged.
5. **Categories** are matched by exact name. Prefix with ` + "`" + `Domain Topic: ` + "`" + ` or ` + "`" + `Utility: ` + "`" + `
   to group them in the category summary.
6. **Tags** are matched exactly when filtering; prefer lowercase, kebab-case.
7. **Deleting or renaming** a file removes the prompt imported from it.

## Composing

Stored prompts are chained with the ` + "`" + `compose` + "`" + ` tool. The combined text joins each non-empty
prompt with a single blank line, in the order given.
`
