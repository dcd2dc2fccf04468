package mcpserver

// FrontmatterContract describes the canonical entry format that LLM
// consumers should follow when creating or updating entries.
const FrontmatterContract = `# Ansuz Frontmatter Contract

Every Markdown entry stored in Ansuz MUST follow this structure.

## Collections

Entries live under a collection directory that determines their schema:

- ` + "`" + `posts/` + "`" + ` — blog posts. Require ` + "`" + `title` + "`" + `, ` + "`" + `description` + "`" + ` and ` + "`" + `date` + "`" + `.
- ` + "`" + `pages/` + "`" + ` — standalone pages. Require only a title (frontmatter or first H1).
- ` + "`" + `papers/` + "`" + ` — annotated paper notes. Require ` + "`" + `title` + "`" + ` and ` + "`" + `date` + "`" + `.

## Structure

` + "```" + `markdown
---
title: Human-readable title         # REQUIRED for posts/papers; pages may use an H1 instead
description: One-sentence summary   # REQUIRED for posts
date: 2025-01-15                    # REQUIRED for posts/papers; ISO-8601 date or datetime
slug: custom-url-slug               # OPTIONAL; defaults to the slugified filename stem
tags:                               # OPTIONAL; YAML list, used for filtering
  - tag-one
  - tag-two
draft: true                         # OPTIONAL; drafts are hidden from listings
weight: 10                          # OPTIONAL; manual ordering for pages
---

Body text in standard Markdown (GFM tables and task lists supported).

Use the highlight directive :h[important phrase] to mark key text;
it renders as highlighted inline text.
` + "```" + `

## Rules

1. **YAML frontmatter fences** (` + "```" + `---` + "```" + `), when present, must be the first
   thing in the file (no leading blank lines).
2. **Slugs** are lowercase, kebab-case (e.g. ` + "`" + `sql-query-engine-part-1` + "`" + `).
   An explicit ` + "`" + `slug` + "`" + ` field that is not a valid slug is rejected.
3. **Tags** are lowercase, kebab-case. Duplicates are dropped.
4. **File paths** end with ` + "`" + `.md` + "`" + ` or ` + "`" + `.mdx` + "`" + ` and use forward slashes.
5. **Encoding** is UTF-8 with a trailing newline.
6. **Unknown frontmatter keys are preserved** (e.g. ` + "`" + `arxiv` + "`" + ` on papers) and
   surfaced in the entry's ` + "`" + `extra` + "`" + ` map.
7. **Highlight directive:** ` + "`" + `:h[text]` + "`" + ` highlights the bracketed text.
   The body must be non-empty and closed on the same line, otherwise the
   marker is left as literal text.

## Assets & Images

- Upload assets via ` + "`" + `POST /api/assets` + "`" + `. Assets are stored in the shared
  ` + "`" + `assets/` + "`" + ` directory (flat, no sub-folders).
- Reference in entries using the absolute path: ` + "`" + `![description](/assets/filename.png)` + "`" + `

## Example

` + "```" + `markdown
---
title: Building a SQL query engine, part 1
description: Parsing SQL into an AST with a hand-written recursive descent parser.
date: 2025-01-20
tags:
  - databases
  - parsers
---

# Building a SQL query engine, part 1

The :h[parser] is the front door of any query engine.

![Architecture sketch](/assets/sql-engine-arch.png)
` + "```" + `
`
