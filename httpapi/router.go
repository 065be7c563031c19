// Package httpapi exposes a small REST surface over a document store,
// alongside the collaboration server's websocket endpoint.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alimasry/deltadoc/delta"
	"github.com/alimasry/deltadoc/store"
)

// documentSummary is the list-view shape returned by GET /api/documents.
type documentSummary struct {
	ID      string `json:"id"`
	Version int    `json:"version"`
}

// documentView is the full shape returned by GET /api/documents/:id.
type documentView struct {
	ID      string      `json:"id"`
	Content interface{} `json:"content"`
	Version int         `json:"version"`
}

// NewRouter builds the gin engine serving deltad's HTTP API.
func NewRouter(st store.DocumentStore) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.GET("/documents", func(c *gin.Context) { listDocuments(c, st) })
	api.GET("/documents/:id", func(c *gin.Context) { getDocument(c, st) })
	api.POST("/documents", func(c *gin.Context) { createDocument(c, st) })

	return r
}

func listDocuments(c *gin.Context, st store.DocumentStore) {
	docs, err := st.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	summaries := make([]documentSummary, len(docs))
	for i, d := range docs {
		summaries[i] = documentSummary{ID: d.ID, Version: d.Version}
	}
	c.JSON(http.StatusOK, gin.H{"documents": summaries})
}

func getDocument(c *gin.Context, st store.DocumentStore) {
	id := c.Param("id")
	info, err := st.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, documentView{ID: info.ID, Content: info.Content, Version: info.Version})
}

type createDocumentRequest struct {
	ID      string       `json:"id" binding:"required"`
	Content *delta.Delta `json:"content"`
}

func createDocument(c *gin.Context, st store.DocumentStore) {
	var req createDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	content := req.Content
	if content == nil {
		content = delta.New()
	}
	if err := st.Create(c.Request.Context(), req.ID, content); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": req.ID})
}
