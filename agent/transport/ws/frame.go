package ws

const (
	FrameUserTranscript = "user_transcript"
	FrameEnd            = "end"

	FrameAgentReply       = "agent_reply"
	FrameTTSUpdateOptions = "tts.update_options"
	FrameError            = "error"
)

type inboundFrame struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type outboundFrame struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Voice   string `json:"voice,omitempty"`
	Message string `json:"message,omitempty"`
}
