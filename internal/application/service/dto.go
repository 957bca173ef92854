package service

// NewClip request to create clip. Fields are raw client input.
type NewClip struct {
	Content string
	Title   string
	// Expires is RFC 3339 date, empty means never.
	Expires  string
	Password string
	// ShortCode custom shortcode, requires APIKey.
	ShortCode string
	APIKey    string
}

// GetClip request to read clip.
type GetClip struct {
	ShortCode string
	Password  string
}

// UpdateClip request to change clip. Nil fields stay untouched.
// Empty Password removes protection, empty Expires makes clip eternal.
type UpdateClip struct {
	Content         *string
	Title           *string
	Expires         *string
	Password        *string
	ShortCode       string
	CurrentPassword string
	APIKey          string
}

// DeleteClip request to delete clip.
type DeleteClip struct {
	ShortCode string
	Password  string
	APIKey    string
}
