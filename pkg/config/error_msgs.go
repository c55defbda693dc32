package config

const (
	OnlyPdfOrEpubAllowed  = "Only PDF or EPUB files are allowed."
	FileAlreadyExists     = "A file with the same name already exists."
	FileNotFound          = "File not found."
	FileNotFoundInStorage = "File not found in storage."
	NoBooksFound          = "No books found."
	UserNotFound          = "user not found"
	SessionNotFound       = "session not found"
	MessageNotFound       = "message not found"
	SessionHasNoMessages  = "session has no messages"
	UploadInProgress      = "an upload with the same name is already in progress"
	MissingSpeechCreds    = "Missing Azure Speech credentials. Check AZURE_SPEECH_KEY and AZURE_SERVICE_REGION environment variables."
)
