package httpapi

import (
	"net/http"
	"strings"

	"github.com/postline/postline/internal/common"
	"github.com/postline/postline/internal/server/auth"
)

// requireAuth checks the Bearer token and that it was issued for the org
// this instance serves.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, common.ErrInvalidToken)
			return
		}
		orgID, err := auth.GetOrgIDFromToken(token, s.secretKey)
		if err != nil {
			writeError(w, err)
			return
		}
		if orgID != s.orgID {
			writeError(w, common.ErrInvalidToken)
			return
		}
		next(w, r)
	}
}
