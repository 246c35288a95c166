package audit

import (
	"net/http"

	"github.com/noah-isme/backend-mandi/internal/obs"
)

// HTTPRecorder records mutating requests after they have been handled.
type HTTPRecorder struct {
	Service Service
	OnError func(error)
}

// Middleware writes a trail entry for every non-GET request passing through.
// Reads are not audited.
func (rec HTTPRecorder) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rec.Service.Enabled || r.Method == http.MethodGet || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		sr := obs.NewStatusRecorder(w)
		next.ServeHTTP(sr, r)

		if err := rec.Service.Record(r.Context(), ActorAdmin, "", "", "", r, sr.Status(), nil); err != nil && rec.OnError != nil {
			rec.OnError(err)
		}
	})
}
