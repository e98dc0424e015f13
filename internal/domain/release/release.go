package release

// DefaultServer is the image server used to bootstrap a machine whose
// release state document has never been written.
const DefaultServer = "https://images.emberos.org"

// State describes the release a machine is committed to. The JSON field
// names are a compatibility contract with the background updater, which
// reads this document to decide what to download.
type State struct {
	// Server is the base URL of the image server hosting track builds.
	Server string `json:"server"`
	// Track is the release track the machine is currently committed to.
	Track string `json:"track"`
	// Current is the revision marker of the applied build; the background
	// updater advances it, a track switch resets it to zero.
	Current int `json:"current"`
}

// Bootstrap returns the state assumed for a machine that has never
// switched tracks: the default server and no committed track.
func Bootstrap() *State {
	return &State{
		Server: DefaultServer,
	}
}

// Clone returns a copy of the state to avoid leaking internal references.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}
