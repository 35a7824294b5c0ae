package catalog

import (
	"fmt"
	"slices"
)

// binAccepts maps a bin media type to the media types it may hold.
var binAccepts = map[string][]string{
	MediaDialogue: {MediaDialogue},
	MediaMusic:    {MediaMusic},
	MediaSFX:      {MediaSFX},
	MediaImage:    {MediaImage},
	MediaVideo:    {MediaVideo},
	MediaScript:   {MediaScript, MediaDialogue},
}

// ownerAccepts maps an owner type to the bin media types it may own.
var ownerAccepts = map[string][]string{
	OwnerActor:  {MediaDialogue, MediaScript},
	OwnerScene:  MediaTypes,
	OwnerGlobal: MediaTypes,
}

// BinAccepts reports whether a bin of binType may hold media of mediaType.
func BinAccepts(binType, mediaType string) bool {
	return slices.Contains(binAccepts[binType], mediaType)
}

// OwnerAccepts reports whether an owner of ownerType may own a bin of binType.
func OwnerAccepts(ownerType, binType string) bool {
	return slices.Contains(ownerAccepts[ownerType], binType)
}

// CheckBin validates a bin against the owner policy.
// Returns a descriptive error, or nil if the bin is allowed.
func CheckBin(b Bin) error {
	if !IsOwnerType(b.OwnerType) {
		return fmt.Errorf("unknown owner_type %q", b.OwnerType)
	}
	if !IsMediaType(b.MediaType) {
		return fmt.Errorf("unknown media_type %q", b.MediaType)
	}
	if b.OwnerType != OwnerGlobal && b.OwnerID == "" {
		return fmt.Errorf("owner_id is required for owner_type %q", b.OwnerType)
	}
	if !OwnerAccepts(b.OwnerType, b.MediaType) {
		return fmt.Errorf("%s owners cannot hold %s bins", b.OwnerType, b.MediaType)
	}
	return nil
}

// CheckMedia validates a media item against its bin (nil when unbinned).
// The media must share the bin's owner and match the bin's media-type policy.
func CheckMedia(m Media, bin *Bin) error {
	if !IsOwnerType(m.OwnerType) {
		return fmt.Errorf("unknown owner_type %q", m.OwnerType)
	}
	if !IsMediaType(m.MediaType) {
		return fmt.Errorf("unknown media_type %q", m.MediaType)
	}
	if m.OwnerType != OwnerGlobal && m.OwnerID == "" {
		return fmt.Errorf("owner_id is required for owner_type %q", m.OwnerType)
	}
	if bin == nil {
		return nil
	}
	if bin.OwnerType != m.OwnerType || bin.OwnerID != m.OwnerID {
		return fmt.Errorf("media owner %s:%s does not match bin owner %s:%s",
			m.OwnerType, m.OwnerID, bin.OwnerType, bin.OwnerID)
	}
	if !BinAccepts(bin.MediaType, m.MediaType) {
		return fmt.Errorf("%s bin %q cannot hold %s media", bin.MediaType, bin.Name, m.MediaType)
	}
	return nil
}
