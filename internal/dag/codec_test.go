package dag

import (
	"encoding/json"
	"testing"

	"github.com/alxayo/chronicle/internal/cas"
)

func TestSecondNodeRoundTrip(t *testing.T) {
	n := NewSecondNode(cas.NewLink(cas.CID("bvideo")))
	n.Chat = append(n.Chat, cas.NewLink(cas.CID("bchat1")), cas.NewLink(cas.CID("bchat2")))

	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got SecondNode
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Video.Target != n.Video.Target {
		t.Fatalf("video mismatch: %s != %s", got.Video.Target, n.Video.Target)
	}
	if len(got.Chat) != 2 || got.Chat[0].Target != "bchat1" || got.Chat[1].Target != "bchat2" {
		t.Fatalf("chat links mismatch: %+v", got.Chat)
	}
}

func TestMinuteHourDayStreamRoundTrip(t *testing.T) {
	minute := &MinuteNode{Seconds: make([]cas.Link, 60)}
	for i := range minute.Seconds {
		minute.Seconds[i] = cas.NewLink(cas.CID("bsecond"))
	}
	data, _ := json.Marshal(minute)
	var gotMinute MinuteNode
	if err := json.Unmarshal(data, &gotMinute); err != nil {
		t.Fatalf("minute unmarshal: %v", err)
	}
	if len(gotMinute.Seconds) != 60 {
		t.Fatalf("expected 60 second slots, got %d", len(gotMinute.Seconds))
	}

	hour := &HourNode{Minutes: []cas.Link{cas.NewLink("bmin1")}}
	data, _ = json.Marshal(hour)
	var gotHour HourNode
	if err := json.Unmarshal(data, &gotHour); err != nil {
		t.Fatalf("hour unmarshal: %v", err)
	}
	if len(gotHour.Minutes) != 1 {
		t.Fatalf("expected 1 minute link, got %d", len(gotHour.Minutes))
	}

	day := &DayNode{Hours: []cas.Link{cas.NewLink("bhour1")}}
	data, _ = json.Marshal(day)
	var gotDay DayNode
	if err := json.Unmarshal(data, &gotDay); err != nil {
		t.Fatalf("day unmarshal: %v", err)
	}
	if len(gotDay.Hours) != 1 {
		t.Fatalf("expected 1 hour link, got %d", len(gotDay.Hours))
	}

	stream := &StreamNode{Timecode: cas.NewLink("bday1")}
	data, _ = json.Marshal(stream)
	var gotStream StreamNode
	if err := json.Unmarshal(data, &gotStream); err != nil {
		t.Fatalf("stream unmarshal: %v", err)
	}
	if gotStream.Timecode.Target != "bday1" {
		t.Fatalf("timecode mismatch: %s", gotStream.Timecode.Target)
	}
}

func TestEncodeNodeReleasesAndRoundTrips(t *testing.T) {
	n := NewSecondNode(cas.NewLink("bvideo"))
	encoded, err := EncodeNode(n)
	if err != nil {
		t.Fatalf("EncodeNode: %v", err)
	}
	defer encoded.Release()

	var got SecondNode
	if err := DecodeNode(encoded.Bytes, &got); err != nil {
		t.Fatalf("DecodeNode: %v", err)
	}
	if got.Video.Target != "bvideo" {
		t.Fatalf("round trip mismatch: %s", got.Video.Target)
	}
}

func TestVideoSetupNodeRoundTrip(t *testing.T) {
	prev := cas.NewLink("bprev")
	v := &VideoSetupNode{
		Quality:  "1080p60",
		Setup:    cas.NewLink("bsetup"),
		Previous: &prev,
		Initseg:  cas.NewLink("binit"),
		Codec:    "avc1",
	}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got VideoSetupNode
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Quality != v.Quality || got.Codec != v.Codec {
		t.Fatalf("scalar fields mismatch: %+v", got)
	}
	if got.Previous == nil || got.Previous.Target != "bprev" {
		t.Fatalf("previous link mismatch: %+v", got.Previous)
	}
}

func TestVideoSetupNodeNilPreviousOmitted(t *testing.T) {
	v := &VideoSetupNode{Quality: "480p30", Setup: cas.NewLink("bsetup"), Initseg: cas.NewLink("binit"), Codec: "avc1"}
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := raw["previous"]; ok {
		t.Fatal("expected previous field to be omitted when nil")
	}
}
