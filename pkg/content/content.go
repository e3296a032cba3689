// Package content defines the catalog content types, list status enums and the
// namespaced content id format ("tv-1399") shared by every service.
package content

import (
	"strings"

	"animov/pkg/apperr"
)

type Type string

const (
	TypeMovie Type = "movie"
	TypeTV    Type = "tv"
	TypeAnime Type = "anime"
	TypeManga Type = "manga"
	TypeBook  Type = "book"
)

var allTypes = []Type{TypeMovie, TypeTV, TypeAnime, TypeManga, TypeBook}

func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

func (t Type) Valid() bool {
	for _, known := range allTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Watchable reports whether t belongs on a watchlist.
func (t Type) Watchable() bool {
	return t == TypeMovie || t == TypeTV || t == TypeAnime
}

// Readable reports whether t belongs on a readlist.
func (t Type) Readable() bool {
	return t == TypeManga || t == TypeBook
}

type WatchStatus string

const (
	WatchPlanned   WatchStatus = "plan_to_watch"
	WatchWatching  WatchStatus = "watching"
	WatchCompleted WatchStatus = "completed"
	WatchOnHold    WatchStatus = "on_hold"
	WatchDropped   WatchStatus = "dropped"
)

func (s WatchStatus) Valid() bool {
	switch s {
	case WatchPlanned, WatchWatching, WatchCompleted, WatchOnHold, WatchDropped:
		return true
	}
	return false
}

type ReadStatus string

const (
	ReadPlanned   ReadStatus = "plan_to_read"
	ReadReading   ReadStatus = "reading"
	ReadCompleted ReadStatus = "completed"
	ReadOnHold    ReadStatus = "on_hold"
	ReadDropped   ReadStatus = "dropped"
)

func (s ReadStatus) Valid() bool {
	switch s {
	case ReadPlanned, ReadReading, ReadCompleted, ReadOnHold, ReadDropped:
		return true
	}
	return false
}

// Namespace returns the stored form of an external id for contentType. Both
// "1399" and "tv-1399" become "tv-1399"; a prefix naming a different content
// type is rejected.
func Namespace(contentType Type, id string) (string, error) {
	if !contentType.Valid() {
		return "", apperr.Kind(apperr.ErrValidation, "unknown content type: "+string(contentType))
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apperr.Kind(apperr.ErrValidation, "content id is required")
	}

	if prefix, raw, ok := strings.Cut(id, "-"); ok && Type(prefix).Valid() {
		if Type(prefix) != contentType {
			return "", apperr.Kind(apperr.ErrValidation, "content id "+id+" does not match content type "+string(contentType))
		}
		if raw == "" {
			return "", apperr.Kind(apperr.ErrValidation, "content id is required")
		}
		return id, nil
	}
	return string(contentType) + "-" + id, nil
}

// Split parses a namespaced id back into its type and external id.
func Split(namespaced string) (Type, string, error) {
	prefix, raw, ok := strings.Cut(namespaced, "-")
	if !ok || raw == "" || !Type(prefix).Valid() {
		return "", "", apperr.Kind(apperr.ErrValidation, "malformed content id: "+namespaced)
	}
	return Type(prefix), raw, nil
}
