package mid_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/deadsgold/powledger/business/web/errs"
	"github.com/deadsgold/powledger/business/web/mid"
	"github.com/deadsgold/powledger/foundation/web"
	"go.uber.org/zap"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Errors(t *testing.T) {
	log := zap.NewNop().Sugar()

	app := web.NewApp(
		make(chan os.Signal, 1),
		mid.Logger(log),
		mid.Errors(log),
		mid.Metrics(),
		mid.Cors("*"),
		mid.Panics(),
	)

	handlers := map[string]web.Handler{
		"/trusted": func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			return errs.NewTrusted(errors.New("rejected by policy"), http.StatusForbidden)
		},
		"/fields": func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			return errs.FieldErrors{{Field: "to", Err: "to is a required field"}}
		},
		"/internal": func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			return errors.New("disk on fire")
		},
		"/panic": func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			panic("boom")
		},
	}
	for path, h := range handlers {
		app.Handle(http.MethodGet, "", path, h)
	}

	tt := []struct {
		path   string
		status int
		msg    string
		field  string
	}{
		{"/trusted", http.StatusForbidden, "rejected by policy", ""},
		{"/fields", http.StatusBadRequest, "data validation error", "to"},
		{"/internal", http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), ""},
		{"/panic", http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), ""},
	}

	t.Log("Given the need to map handler errors to responses.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen calling %s.", testID, tst.path)
			{
				r := httptest.NewRequest(http.MethodGet, tst.path, nil)
				w := httptest.NewRecorder()
				app.ServeHTTP(w, r)

				if w.Code != tst.status {
					t.Fatalf("\t%s\tTest %d:\tShould receive a %d status code, got %d.", failed, testID, tst.status, w.Code)
				}
				t.Logf("\t%s\tTest %d:\tShould receive a %d status code.", success, testID, tst.status)

				var resp errs.Response
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to decode the response: %s", failed, testID, err)
				}

				if resp.Error != tst.msg {
					t.Fatalf("\t%s\tTest %d:\tShould get back %q, got %q.", failed, testID, tst.msg, resp.Error)
				}
				t.Logf("\t%s\tTest %d:\tShould get back the error message.", success, testID)

				if tst.field != "" {
					if _, exists := resp.Fields[tst.field]; !exists {
						t.Fatalf("\t%s\tTest %d:\tShould report the %s field.", failed, testID, tst.field)
					}
				}

				if w.Header().Get("Access-Control-Allow-Origin") != "*" {
					t.Fatalf("\t%s\tTest %d:\tShould set the cors headers.", failed, testID)
				}
			}
		}
	}
}
