package models

import (
	"time"
)

// RemoteFile identifies one addressable file on a share
type RemoteFile struct {
	// Share is the name of the share the file lives on
	Share string `json:"share,omitempty"`

	// Path is the file path relative to the share root
	Path string `json:"path"`

	// Size in bytes
	Size int64 `json:"size"`

	// ModTime is the last modification time as last observed
	ModTime time.Time `json:"modified"`

	// Created is the creation time, if the backend reports one
	Created time.Time `json:"created,omitempty"`

	// HasCreated indicates whether Created carries a real value
	HasCreated bool `json:"has_created,omitempty"`

	// Checksum is the SHA-256 content checksum (optional, computed on demand)
	Checksum string `json:"checksum,omitempty"`
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
