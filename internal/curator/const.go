package curator

// PocketBase collections and views.
const (
	NotebooksCollection = "notebooks"
	NotesCollection     = "notes"
	TagsCollection      = "tags"
	SettingsCollection  = "settings"
	TagsView            = "tags_with_note_counts"
	NotesView           = "notes_without_content"
	NotebooksView       = "notebooks_with_note_counts"
	FTSCollection       = "_fts"
	InboxNotebook       = "Inbox"
)

// Credentials of the superuser the bundled PocketBase image is provisioned with.
const (
	DefaultSuperuserEmail    = "admin@pocketbase.com"
	DefaultSuperuserPassword = "amiodarone"
)

const (
	notesPerPage    = 24
	discoverPerPage = 30
	noteExpand      = "notebook,tags"
	attachmentsAdd  = "attachments+"
)
