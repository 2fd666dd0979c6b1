package dag

import "github.com/alxayo/chronicle/internal/cas"

// VideoSetupNode describes one quality rung of a stream's transcode
// ladder, chained to the previous rung so a viewer can walk back through a
// quality's segment history. Grounded on the original source's
// linked-data/src/video.rs (SetupNode/VideoNode), collapsed to the single
// record named in spec.md §4.1 ("`quality`, `setup`, `previous`,
// `initseg`, `codec` on video-setup nodes"). It is never produced by the
// Chronicler itself — the external video pipeline supplies its CID as the
// `video` field of a SecondNode — but is kept here as a complete,
// round-trippable schema.
type VideoSetupNode struct {
	Quality  string    `json:"quality"`
	Setup    cas.Link  `json:"setup"`
	Previous *cas.Link `json:"previous,omitempty"`
	Initseg  cas.Link  `json:"initseg"`
	Codec    string    `json:"codec"`
}
