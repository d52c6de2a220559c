package version

// VERSION is the current release tag. cmd/t2 prints it and compares it
// against the published one.
const VERSION = "v0.1.0"

const UPDATE_MESSAGE = "This release adds local, subprocess-isolated transcription in place of the cloud streaming API."
