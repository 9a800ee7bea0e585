package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
)

// Recover converts handler panics into a bare 500 and logs the stack. A response that
// already started keeps its status; only the log line records the panic.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := newStatusRecorder(w)
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}
				log.Printf("http: panic recovered method=%s path=%s request_id=%s panic=%v stack=%s",
					r.Method, r.URL.Path, RequestIDFrom(r.Context()), recovered, debug.Stack())
				if !rec.written {
					rec.WriteHeader(http.StatusInternalServerError)
				}
			}
		}()
		next.ServeHTTP(rec, r)
	})
}
