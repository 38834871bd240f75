package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/policy-sync/internal/analytics"
	"github.com/Veraticus/policy-sync/internal/common"
	"github.com/Veraticus/policy-sync/internal/reconcile"
	"github.com/Veraticus/policy-sync/internal/rowparse"
	"github.com/Veraticus/policy-sync/internal/service"
	"github.com/Veraticus/policy-sync/internal/tabular"
	"github.com/gorilla/mux"
)

var errBadRequest = errors.New("bad request")

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) importContext(r *http.Request, clientScope string) (reconcile.ImportContext, error) {
	session := service.StaticSession(r.Header.Get(OperatorHeader))
	return reconcile.NewImportContext(r.Context(), session, clientScope)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		s.fail(w, r, fmt.Errorf("%w: %v", errBadRequest, err), nil)
		return
	}

	ic, err := s.importContext(r, r.FormValue("client_id"))
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: multipart field \"file\" is required", errBadRequest), nil)
		return
	}
	defer func() { _ = file.Close() }()

	table, err := tabular.Decode(header.Filename, file)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}

	var out *reconcile.Outcome
	switch kind {
	case "policies":
		out, err = s.engine.ImportPolicies(r.Context(), table, ic)
	case "claims":
		out, err = s.engine.ImportClaims(r.Context(), table, ic)
	}
	if err != nil {
		s.fail(w, r, err, out)
		return
	}
	s.ok(w, out)
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := s.store.GetCompanies(r.Context())
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	s.ok(w, companies)
}

func (s *Server) handlePolicies(w http.ResponseWriter, r *http.Request) {
	ic, err := s.importContext(r, "")
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	q := r.URL.Query()
	policies, err := s.store.GetPolicies(r.Context(), service.PolicyFilter{
		OwnerID:         ic.OperatorID,
		ClientID:        q.Get("client_id"),
		PolicyNumber:    q.Get("number"),
		IncludeArchived: q.Get("all") == "true",
	})
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	s.ok(w, policies)
}

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	kind := mux.Vars(r)["kind"]
	aliases, _ := rowparse.AliasesFor(kind)

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", kind+"-template.xlsx"))
	if err := tabular.WriteTemplate(w, aliases.TemplateHeaders(), aliases.TemplateSample()); err != nil {
		common.FromContext(r.Context()).Error("Failed to write template", "kind", kind, "error", err)
	}
}

func (s *Server) handleLossRatio(w http.ResponseWriter, r *http.Request) {
	ic, err := s.importContext(r, "")
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}

	period, err := parsePeriod(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}

	report, err := s.reporter.LossRatio(r.Context(), ic.OperatorID, period)
	if err != nil {
		if errors.Is(err, analytics.ErrInvalidPeriod) {
			err = fmt.Errorf("%w: %w", errBadRequest, err)
		}
		s.fail(w, r, err, nil)
		return
	}
	s.ok(w, report)
}

// parsePeriod reads from/to dates in any format the import files accept.
// A missing from is the start of the to date's year; a missing to is today.
func parsePeriod(from, to string) (analytics.Period, error) {
	var p analytics.Period
	var err error

	if strings.TrimSpace(to) == "" {
		now := time.Now().UTC()
		p.To = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	} else if p.To, err = rowparse.ParseDate(to); err != nil {
		return p, fmt.Errorf("%w: to %q: %w", errBadRequest, to, err)
	}

	if strings.TrimSpace(from) == "" {
		p.From = time.Date(p.To.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	} else if p.From, err = rowparse.ParseDate(from); err != nil {
		return p, fmt.Errorf("%w: from %q: %w", errBadRequest, from, err)
	}
	return p, nil
}
