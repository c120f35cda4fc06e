package syllabus

import "errors"

// Sentinel errors for catalog loading and chapter lookup.

// ErrCatalogRead indicates the catalog file could not be read.
var ErrCatalogRead = errors.New("failed to read syllabus catalog")

// ErrCatalogParse indicates the catalog YAML could not be decoded.
var ErrCatalogParse = errors.New("failed to parse syllabus catalog")

// ErrCatalogInvalid indicates the catalog decoded but is structurally unusable
// (no subjects, unnamed subject, paper without chapters, ...).
var ErrCatalogInvalid = errors.New("syllabus catalog is invalid")

// ErrChapterSpec indicates a chapter reference was not in "Subject/Paper/Chapter" form.
var ErrChapterSpec = errors.New("chapter must be given as Subject/Paper/Chapter")

// ErrUnknownChapter indicates a chapter reference does not exist in the catalog.
var ErrUnknownChapter = errors.New("chapter not found in syllabus")
