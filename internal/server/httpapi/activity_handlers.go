package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) listActivities(c *gin.Context) {
	acts, err := s.deps.Activities.List(c.Request.Context(), callerID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, acts)
}

func (s *HTTPServer) clearActivities(c *gin.Context) {
	if _, err := s.deps.Activities.Clear(mutationCtx(c), callerID(c)); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Activity logs cleared"})
}
