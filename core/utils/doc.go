// Package utils provides common utility functions for the hardcover-sync application.
// It includes normalization helpers for book identifiers, titles and author names
// shared between the matcher and the remote client.
package utils
