package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aldenhart/docspace/internal/api/middleware"
	"github.com/aldenhart/docspace/internal/api/response"
	"github.com/aldenhart/docspace/internal/domain"
	"github.com/aldenhart/docspace/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// DocumentHandler handles document and comment endpoints
type DocumentHandler struct {
	documentService *service.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func documentID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "documentID"))
}

// Create handles document creation in a space
func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	spaceID, ok := middleware.GetSpaceID(r.Context())
	if !ok {
		response.BadRequest(w, "missing space ID")
		return
	}

	var input domain.DocumentCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	doc, err := h.documentService.CreateDocument(r.Context(), userID, spaceID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, doc)
}

// List handles listing a space's documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	spaceID, ok := middleware.GetSpaceID(r.Context())
	if !ok {
		response.BadRequest(w, "missing space ID")
		return
	}

	docs, err := h.documentService.ListDocuments(r.Context(), userID, spaceID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, docs)
}

// Get handles getting a document by ID
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	docID, err := documentID(r)
	if err != nil {
		response.BadRequest(w, "invalid document ID")
		return
	}

	doc, err := h.documentService.GetDocument(r.Context(), userID, docID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, doc)
}

// CreateComment handles attaching a comment to a document
func (h *DocumentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	docID, err := documentID(r)
	if err != nil {
		response.BadRequest(w, "invalid document ID")
		return
	}

	var input domain.CommentCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	comment, err := h.documentService.CreateComment(r.Context(), userID, docID, input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, comment)
}

// ListComments handles listing a document's comments
func (h *DocumentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	docID, err := documentID(r)
	if err != nil {
		response.BadRequest(w, "invalid document ID")
		return
	}

	comments, err := h.documentService.ListComments(r.Context(), userID, docID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, comments)
}

// GetComment handles getting a comment by ID
func (h *DocumentHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	commentID, err := uuid.Parse(chi.URLParam(r, "commentID"))
	if err != nil {
		response.BadRequest(w, "invalid comment ID")
		return
	}

	comment, err := h.documentService.GetComment(r.Context(), userID, commentID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, comment)
}
