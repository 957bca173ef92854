package event

// Event names.
const (
	ClipCreatedName   = "clip.created"
	ClipViewedName    = "clip.viewed"
	ClipUpdatedName   = "clip.updated"
	ClipDeletedName   = "clip.deleted"
	ClipsSweptName    = "clip.swept"
	APIKeyCreatedName = "apikey.created"
	APIKeyRevokedName = "apikey.revoked"
	HitsIncrementLost = "clip.hits.lost"
)

// ClipEvent describes something happened with one clip.
type ClipEvent struct {
	baseEvent
	shortcode  string
	protected  bool
	privileged bool
}

func newClipEvent(name, shortcode string, protected, privileged bool) ClipEvent {
	return ClipEvent{
		baseEvent: baseEvent{
			name:  name,
			async: true,
		},
		shortcode:  shortcode,
		protected:  protected,
		privileged: privileged,
	}
}

// NewClipCreatedEvent constructor.
func NewClipCreatedEvent(shortcode string, protected, privileged bool) ClipEvent {
	return newClipEvent(ClipCreatedName, shortcode, protected, privileged)
}

// NewClipViewedEvent constructor.
func NewClipViewedEvent(shortcode string, protected bool) ClipEvent {
	return newClipEvent(ClipViewedName, shortcode, protected, false)
}

// NewClipUpdatedEvent constructor.
func NewClipUpdatedEvent(shortcode string, protected, privileged bool) ClipEvent {
	return newClipEvent(ClipUpdatedName, shortcode, protected, privileged)
}

// NewClipDeletedEvent constructor.
func NewClipDeletedEvent(shortcode string, privileged bool) ClipEvent {
	return newClipEvent(ClipDeletedName, shortcode, false, privileged)
}

// NewHitsIncrementLostEvent constructor.
func NewHitsIncrementLostEvent(shortcode string) ClipEvent {
	return newClipEvent(HitsIncrementLost, shortcode, false, false)
}

// ShortCode getter.
func (e ClipEvent) ShortCode() string {
	return e.shortcode
}

// Protected getter.
func (e ClipEvent) Protected() bool {
	return e.protected
}

// Privileged getter. True if apikey was used.
func (e ClipEvent) Privileged() bool {
	return e.privileged
}

// ClipsSweptEvent describes expired clips sweep.
type ClipsSweptEvent struct {
	baseEvent
	removed uint64
}

// NewClipsSweptEvent constructor.
func NewClipsSweptEvent(removed uint64) ClipsSweptEvent {
	return ClipsSweptEvent{
		baseEvent: baseEvent{name: ClipsSweptName, async: true},
		removed:   removed,
	}
}

// Removed getter.
func (e ClipsSweptEvent) Removed() uint64 {
	return e.removed
}

// APIKeyEvent describes apikey creation or revocation.
type APIKeyEvent struct {
	baseEvent
	effective bool
}

// NewAPIKeyCreatedEvent constructor.
func NewAPIKeyCreatedEvent() APIKeyEvent {
	return APIKeyEvent{
		baseEvent: baseEvent{name: APIKeyCreatedName, async: true},
		effective: true,
	}
}

// NewAPIKeyRevokedEvent constructor. revoked is false if key was not found.
func NewAPIKeyRevokedEvent(revoked bool) APIKeyEvent {
	return APIKeyEvent{
		baseEvent: baseEvent{name: APIKeyRevokedName, async: true},
		effective: revoked,
	}
}

// Effective getter.
func (e APIKeyEvent) Effective() bool {
	return e.effective
}
