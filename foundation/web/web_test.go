package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/deadsgold/powledger/foundation/web"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_App(t *testing.T) {
	t.Log("Given the need to route requests through middleware.")
	{
		shutdown := make(chan os.Signal, 1)

		var order []string
		mw := func(name string) web.Middleware {
			return func(handler web.Handler) web.Handler {
				return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
					order = append(order, name)
					return handler(ctx, w, r)
				}
			}
		}

		app := web.NewApp(shutdown, mw("app"))

		echo := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			v, err := web.GetValues(ctx)
			if err != nil {
				return err
			}

			var body struct {
				Name string `json:"name"`
			}
			if err := web.Decode(r, &body); err != nil {
				return web.Respond(ctx, w, map[string]string{"error": err.Error()}, http.StatusBadRequest)
			}

			resp := map[string]string{
				"name":    body.Name,
				"id":      web.Param(r, "id"),
				"traceid": v.TraceID,
			}
			return web.Respond(ctx, w, resp, http.StatusOK)
		}
		app.Handle(http.MethodPost, "v1", "/echo/:id", echo, mw("route"))

		fail := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			return web.NewShutdownError("integrity")
		}
		app.Handle(http.MethodGet, "v1", "/fail", fail)

		t.Logf("\tTest 0:\tWhen handling a routed request.")
		{
			r := httptest.NewRequest(http.MethodPost, "/v1/echo/42", strings.NewReader(`{"name":"bill"}`))
			w := httptest.NewRecorder()
			app.ServeHTTP(w, r)

			if w.Code != http.StatusOK {
				t.Fatalf("\t%s\tTest 0:\tShould receive a 200 status code, got %d.", failed, w.Code)
			}
			t.Logf("\t%s\tTest 0:\tShould receive a 200 status code.", success)

			var resp map[string]string
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to decode the response: %s", failed, err)
			}

			if resp["name"] != "bill" || resp["id"] != "42" || resp["traceid"] == "" {
				t.Fatalf("\t%s\tTest 0:\tShould get back the request values: %v", failed, resp)
			}
			t.Logf("\t%s\tTest 0:\tShould get back the request values.", success)

			if strings.Join(order, ",") != "app,route" {
				t.Fatalf("\t%s\tTest 0:\tShould run app middleware before route middleware: %v", failed, order)
			}
			t.Logf("\t%s\tTest 0:\tShould run app middleware before route middleware.", success)
		}

		t.Logf("\tTest 1:\tWhen decoding a payload with unknown fields.")
		{
			r := httptest.NewRequest(http.MethodPost, "/v1/echo/1", strings.NewReader(`{"nam":"bill"}`))
			w := httptest.NewRecorder()
			app.ServeHTTP(w, r)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("\t%s\tTest 1:\tShould receive a 400 status code, got %d.", failed, w.Code)
			}
			t.Logf("\t%s\tTest 1:\tShould receive a 400 status code.", success)
		}

		t.Logf("\tTest 2:\tWhen a handler returns a shutdown error.")
		{
			r := httptest.NewRequest(http.MethodGet, "/v1/fail", nil)
			w := httptest.NewRecorder()
			app.ServeHTTP(w, r)

			select {
			case <-shutdown:
				t.Logf("\t%s\tTest 2:\tShould signal a shutdown.", success)
			default:
				t.Fatalf("\t%s\tTest 2:\tShould signal a shutdown.", failed)
			}
		}
	}
}

func Test_IsShutdown(t *testing.T) {
	err := web.NewShutdownError("boom")
	wrapped := errors.Join(errors.New("context"), err)

	if !web.IsShutdown(wrapped) {
		t.Fatalf("Should find a wrapped shutdown error.")
	}

	if web.IsShutdown(errors.New("boom")) {
		t.Fatalf("Should not treat a plain error as a shutdown.")
	}
}
