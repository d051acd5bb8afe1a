package fstree

import (
	"path/filepath"
	"strings"
)

// fileTypes maps lower-case extensions to coarse type names. The type groups
// drive the type colorer, so related formats share a name.
var fileTypes = map[string]string{
	// Source code
	".go": "Code", ".py": "Code", ".js": "Code", ".ts": "Code", ".rs": "Code",
	".c": "Code", ".h": "Code", ".cpp": "Code", ".cc": "Code", ".java": "Code",
	".rb": "Code", ".sh": "Code", ".m": "Code", ".swift": "Code", ".kt": "Code",

	// Documents and text
	".md": "Document", ".txt": "Document", ".pdf": "Document", ".doc": "Document",
	".docx": "Document", ".rtf": "Document", ".html": "Document", ".htm": "Document",

	// Structured data
	".json": "Data", ".yaml": "Data", ".yml": "Data", ".toml": "Data",
	".xml": "Data", ".csv": "Data", ".db": "Data", ".sqlite": "Data", ".sqlite3": "Data",

	// Media
	".png": "Image", ".jpg": "Image", ".jpeg": "Image", ".gif": "Image",
	".svg": "Image", ".webp": "Image", ".heic": "Image", ".tiff": "Image",
	".mp4": "Video", ".mov": "Video", ".avi": "Video", ".mkv": "Video", ".webm": "Video",
	".mp3": "Audio", ".wav": "Audio", ".ogg": "Audio", ".flac": "Audio", ".aac": "Audio",

	// Archives and disk images
	".zip": "Archive", ".tar": "Archive", ".gz": "Archive", ".tgz": "Archive",
	".rar": "Archive", ".7z": "Archive", ".bz2": "Archive", ".xz": "Archive",
	".zst": "Archive", ".dmg": "Archive", ".iso": "Archive",

	// Binaries
	".exe": "Binary", ".dll": "Binary", ".so": "Binary", ".dylib": "Binary",
	".a": "Binary", ".o": "Binary", ".wasm": "Binary", ".class": "Binary",
}

// DetectFileType returns the type group for a path based on its extension,
// or "File" when the extension is unknown.
func DetectFileType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := fileTypes[ext]; ok {
		return t
	}
	return "File"
}
