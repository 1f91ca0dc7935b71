package tracking

import (
	"net"
	"net/http"
	"strings"
	"time"
)

// Tracking receives one event per answered city lookup.
type Tracking interface {
	TrackLookup(event LookupEvent)
}

type LookupEvent struct {
	RequestId string `json:"request_id"`
	Country   string `json:"country,omitempty"`
	City      string `json:"city"`
	Hits      int    `json:"hits"`
	Found     bool   `json:"found"`
	UserAgent string `json:"user_agent,omitempty"`
	Ip        string `json:"ip,omitempty"`
	Referer   string `json:"referer,omitempty"`
	Timestamp int64  `json:"ts"`
}

// NewLookupEvent fills the client details of an event from r.
func NewLookupEvent(r *http.Request, requestId, city string, hits int) LookupEvent {
	return LookupEvent{
		RequestId: requestId,
		City:      city,
		Hits:      hits,
		Found:     hits > 0,
		UserAgent: r.UserAgent(),
		Ip:        clientIp(r),
		Referer:   r.Header.Get("Referer"),
		Timestamp: time.Now().Unix(),
	}
}

func clientIp(r *http.Request) string {
	ip := r.Header.Get("X-Real-Ip")
	if ip == "" {
		ip = r.Header.Get("X-Forwarded-For")
		// May be a list; take the first
		if idx := strings.IndexByte(ip, ','); idx >= 0 {
			ip = ip[:idx]
		}
		ip = strings.TrimSpace(ip)
	}
	if ip == "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		} else {
			ip = r.RemoteAddr
		}
	}
	return ip
}
