package api

import (
	"net/http"

	"github.com/platinummonkey/stockroom/pkg/httputil"
	"github.com/platinummonkey/stockroom/pkg/inventory"
)

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var input inventory.CreateItemInput
	if !httputil.ParseJSONOrError(w, r, &input) {
		return
	}

	item, err := s.items.Create(r.Context(), input)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	httputil.WriteCreated(w, item)
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	params, err := httputil.ParsePagination(r)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	filter := inventory.ItemFilter{}
	if search := httputil.ParseQueryString(r, "search", ""); search != "" {
		filter.Search = &search
	}

	page, err := s.items.List(r.Context(), filter, params)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, page)
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	item, err := s.items.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, item)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	var input inventory.UpdateItemInput
	if !httputil.ParseJSONOrError(w, r, &input) {
		return
	}

	item, err := s.items.Update(r.Context(), id, input)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, item)
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathUUIDOrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.items.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	httputil.WriteNoContent(w)
}
