package mcpserver

// NoteFormatContract describes the canonical dated-entry note format that
// LLM consumers should follow when reading or appending note content.
const NoteFormatContract = `# Daybook Note Entry Format

Every note file in the vault MUST follow this structure.

## Structure

` + "```" + `markdown
---
note_project_id: eco                # REQUIRED – links the file to a project
---

1/15/25

Plain Markdown content for January 15 2025.

## Milestones

Content filed under the Milestones section of that day.

1/16/25

Next day's entry.
` + "```" + `

## Rules

1. **Note files end with ` + "`" + `Notes.md` + "`" + `** (or ` + "`" + `notes.md` + "`" + `). Other Markdown files
   are project pages and are never scanned for entries.
2. **Date headers** are ` + "`" + `M/D/YY` + "`" + ` on a line of their own (e.g. ` + "`" + `6/1/24` + "`" + `,
   ` + "`" + `12/31/25` + "`" + `). A trailing colon is tolerated. The date must be a real
   calendar date.
3. **One entry per day.** An entry runs from its date header to the next
   date header (or end of file). Days are separated by a blank line.
4. **Sections** are ` + "`" + `##` + "`" + ` headings inside a day entry (e.g. ` + "`" + `## Milestones` + "`" + `).
   Appending to an existing section adds below its current content.
5. **Never write date headers yourself** when using ` + "`" + `update_project_note` + "`" + `;
   today's header is created and targeted for you.
6. **Project pages** carry ` + "`" + `project_id` + "`" + ` in frontmatter; children declare
   ` + "`" + `project_parent` + "`" + `. The display name comes from the first ` + "`" + `#` + "`" + ` heading,
   falling back to the file name.
7. **Encoding** is UTF-8 with a trailing newline.

## Assets & Images

- Upload assets via the ` + "`" + `upload_asset` + "`" + ` tool. It returns a ` + "`" + `markdown_image` + "`" + ` field ready to paste into note content.
- Assets are stored in the shared ` + "`" + `attachments/` + "`" + ` directory (flat, no sub-folders).
- Reference in notes using the absolute path: ` + "`" + `![description](/attachments/filename.png)` + "`" + `
- Supported formats: png, jpg, jpeg, gif, webp, svg, pdf.
- Do **not** use relative paths like ` + "`" + `./attachments/...` + "`" + ` — always use ` + "`" + `/attachments/filename` + "`" + `.

## Example

` + "```" + `markdown
---
note_project_id: eco
---

1/20/25

Kickoff recap with the field team.

![Whiteboard photo](/attachments/kickoff-2025-01-20.jpg)

## Milestones

Sensor calibration scheduled for Friday.

1/21/25

Draft budget sent for review.
` + "```" + `
`
