// Package notify delivers alerts to a Slack incoming webhook.
package notify

// message is the incoming-webhook payload. Text doubles as the
// notification fallback when Blocks are present.
type message struct {
	Blocks []block `json:"blocks,omitempty"`
	Text   string  `json:"text"`
}

type block struct {
	Type     string `json:"type"`
	Text     *text  `json:"text,omitempty"`
	Fields   []text `json:"fields,omitempty"`
	Elements []any  `json:"elements,omitempty"`
}

type text struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type button struct {
	Type     string `json:"type"`
	Text     *text  `json:"text"`
	URL      string `json:"url"`
	ActionID string `json:"action_id"`
}

func plain(s string) *text {
	return &text{Type: "plain_text", Text: s, Emoji: true}
}

func mrkdwn(s string) text {
	return text{Type: "mrkdwn", Text: s}
}

func mrkdwnPtr(s string) *text {
	t := mrkdwn(s)
	return &t
}
