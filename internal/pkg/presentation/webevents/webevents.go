package webevents

import (
	"encoding/json"
	"net/http"

	gosse "github.com/alexandrevicenzi/go-sse"
)

// WebEvents pushes server sent events to connected dashboards.
type WebEvents interface {
	Handler() http.Handler
	Publish(event string, data any) error
	Shutdown()
}

type webEvents struct {
	s *gosse.Server
}

func New() WebEvents {
	return &webEvents{
		s: gosse.NewServer(&gosse.Options{
			// every subscriber shares one channel regardless of request path
			ChannelNameFunc: func(*http.Request) string { return "bins" },
			Headers: map[string]string{
				"Access-Control-Allow-Origin": "*",
			},
		}),
	}
}

func (we *webEvents) Handler() http.Handler {
	return we.s
}

func (we *webEvents) Shutdown() {
	we.s.Shutdown()
}

// Publish broadcasts data, encoded as json, to every connected client.
func (we *webEvents) Publish(event string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}

	we.s.SendMessage("", gosse.NewMessage("", string(b), event))

	return nil
}
