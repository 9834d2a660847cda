package validator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/deadsgold/powledger/foundation/blockchain/database"
)

// Remote asks an HTTP predicate service about each transaction. The
// transaction is POSTed in dictionary form and the service responds with
// {"approve": bool}. Any failure to get a well formed approval is a
// rejection.
type Remote struct {
	url       string
	client    *http.Client
	evHandler func(v string, args ...any)
}

// NewRemote constructs a remote policy. A zero timeout uses five seconds.
func NewRemote(url string, timeout time.Duration, evHandler func(v string, args ...any)) *Remote {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	return &Remote{
		url:       url,
		client:    &http.Client{Timeout: timeout},
		evHandler: evHandler,
	}
}

// Validate implements the Policy interface.
func (r *Remote) Validate(tx database.Tx) bool {
	approve, err := r.ask(context.Background(), tx)
	if err != nil {
		r.evHandler("validator: Remote: tx[%s]: ERROR: %s", tx, err)
		return false
	}

	r.evHandler("validator: Remote: tx[%s]: approve[%v]", tx, approve)
	return approve
}

// String implements the fmt.Stringer interface.
func (r *Remote) String() string {
	return "remote[" + r.url + "]"
}

func (r *Remote) ask(ctx context.Context, tx database.Tx) (bool, error) {
	data, err := json.Marshal(tx)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(data))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("status %d", resp.StatusCode)
	}

	var decision struct {
		Approve *bool `json:"approve"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decision); err != nil {
		return false, err
	}

	if decision.Approve == nil {
		return false, fmt.Errorf("missing approve field")
	}

	return *decision.Approve, nil
}
