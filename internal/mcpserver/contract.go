package mcpserver

// FormatURI identifies the notes file format resource.
const FormatURI = "notes://format"

// NotesFormat describes how notes are stored, for MCP clients that want to
// know what add_note will accept.
const NotesFormat = `# Notes File Format

Notes are kept in a single UTF-8 text file, one note per line.

## Rules

1. A note is any non-blank, single-line string. Leading and trailing spaces are kept.
2. ` + "`add_note`" + ` rejects content that is blank or contains a line break.
3. Duplicate notes are allowed; each line is a separate note.
4. Blank lines in the file are ignored and do not take a number in listings.
5. Notes have no ids or timestamps. Their order is the order of lines in the file.

## Tools

- ` + "`get_my_notes`" + ` lists notes numbered from 1, or "No notes found".
- ` + "`add_note`" + ` appends one note.
- ` + "`delete_random_notes`" + ` removes ` + "`count`" + ` notes chosen at random (default 1).
  A count equal to or above the number of notes clears the file.
- ` + "`get_note_history`" + ` lists recent additions and deletions when the journal is enabled.
`
