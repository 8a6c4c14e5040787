package client

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"petstore-backend/internal/clock"
	"petstore-backend/internal/model"
)

// SignatureTolerance bounds how old a signed notification may be before it
// is rejected as a possible replay.
const SignatureTolerance = 5 * time.Minute

// WebhookVerifier authenticates inbound gateway notifications. It is pure:
// no storage access, so it can be tested in isolation.
type WebhookVerifier struct {
	secret string
	clock  clock.Clock
}

func NewWebhookVerifier(secret string, clk clock.Clock) *WebhookVerifier {
	return &WebhookVerifier{secret: secret, clock: clk}
}

// VerifyAndParse checks the signature header against the raw body and, on
// success, decodes the typed event. The header format follows the gateway's
// scheme: "t=<unix>,v1=<hex hmac-sha256>".
func (v *WebhookVerifier) VerifyAndParse(body []byte, sigHeader string) (*model.WebhookEvent, error) {
	ts, sig, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrSignatureInvalid, err)
	}

	age := v.clock.Now().Sub(time.Unix(ts, 0))
	if age > SignatureTolerance || age < -SignatureTolerance {
		return nil, fmt.Errorf("%w: timestamp outside tolerance", model.ErrSignatureInvalid)
	}

	expected := computeSignature(v.secret, ts, body)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return nil, fmt.Errorf("%w: signature mismatch", model.ErrSignatureInvalid)
	}

	var event model.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedEvent, err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("%w: missing event type", model.ErrMalformedEvent)
	}

	return &event, nil
}

// SignPayload produces a valid signature header for the given payload.
// Used by tests and local tooling to emit signed events.
func SignPayload(secret string, ts time.Time, body []byte) string {
	unix := ts.Unix()
	return fmt.Sprintf("t=%d,v1=%s", unix, computeSignature(secret, unix, body))
}

func computeSignature(secret string, ts int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func parseSignatureHeader(header string) (ts int64, sig string, err error) {
	if header == "" {
		return 0, "", fmt.Errorf("missing signature header")
	}
	for _, part := range strings.Split(header, ",") {
		k, val, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			ts, err = strconv.ParseInt(val, 10, 64)
			if err != nil {
				return 0, "", fmt.Errorf("bad timestamp: %v", err)
			}
		case "v1":
			sig = val
		}
	}
	if ts == 0 || sig == "" {
		return 0, "", fmt.Errorf("incomplete signature header")
	}
	return ts, sig, nil
}
