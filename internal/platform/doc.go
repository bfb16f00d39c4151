package platform

// Package platform contains OS integration: filesystem helpers, the user's
// downloads directory, and opening or revealing files with system tools.
