package builder

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the structural copy of a draft and its link buttons as stored
// in a template. Live-only scratch state (above text, above image, pings) is
// deliberately excluded: loading a template reproduces the embed, not the
// session around it.
type Snapshot struct {
	Embed   *Draft         `json:"embed"`
	Buttons *LinkButtonSet `json:"buttons,omitempty"`
}

// TakeSnapshot deep-copies the session's current draft and buttons under
// the session lock.
func TakeSnapshot(session *Session) Snapshot {
	session.mu.Lock()
	defer session.mu.Unlock()
	return Snapshot{
		Embed:   session.Draft.Clone(),
		Buttons: session.Buttons.Clone(),
	}
}

// Apply replaces the session's draft and buttons wholesale.
func (s Snapshot) Apply(session *Session) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if s.Embed != nil {
		session.Draft = s.Embed.Clone()
	} else {
		session.Draft = NewDraft()
	}
	if s.Buttons != nil {
		session.Buttons = s.Buttons.Clone()
	} else {
		session.Buttons = NewLinkButtonSet()
	}
}

func (s Snapshot) Encode() ([]byte, []byte, error) {
	embed, err := json.Marshal(s.Embed)
	if err != nil {
		return nil, nil, fmt.Errorf("encode embed snapshot: %w", err)
	}
	buttons, err := json.Marshal(s.Buttons)
	if err != nil {
		return nil, nil, fmt.Errorf("encode buttons snapshot: %w", err)
	}
	return embed, buttons, nil
}

func DecodeSnapshot(embedData, buttonData []byte) (Snapshot, error) {
	var snapshot Snapshot
	if len(embedData) > 0 {
		snapshot.Embed = NewDraft()
		if err := json.Unmarshal(embedData, snapshot.Embed); err != nil {
			return Snapshot{}, fmt.Errorf("decode embed snapshot: %w", err)
		}
	}
	if len(buttonData) > 0 {
		snapshot.Buttons = NewLinkButtonSet()
		if err := json.Unmarshal(buttonData, snapshot.Buttons); err != nil {
			return Snapshot{}, fmt.Errorf("decode buttons snapshot: %w", err)
		}
	}
	return snapshot, nil
}
