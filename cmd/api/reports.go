package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/hamidsetar/gestiondestock/pkg/export"
	"github.com/hamidsetar/gestiondestock/pkg/ledger"
	"github.com/hamidsetar/gestiondestock/pkg/models"
	"github.com/xuri/excelize/v2"
)

// debtFilter reads ?from= and ?to=. The to date covers its whole day.
func (s *Server) debtFilter(r *http.Request) (from, to *time.Time, err error) {
	loc := s.ledger.Location()
	if from, err = queryDate(r, "from", loc); err != nil {
		return nil, nil, err
	}
	if to, err = queryDate(r, "to", loc); err != nil {
		return nil, nil, err
	}
	if to != nil {
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &end
	}
	return from, to, nil
}

func (s *Server) debtsHandler(w http.ResponseWriter, r *http.Request) {
	from, to, err := s.debtFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	debts, err := s.ledger.ClientDebts(r.Context(), from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	debts = ledger.SearchDebts(debts, r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, struct {
		Clients []models.DebtSummary `json:"clients"`
		Totals  models.DebtTotals    `json:"totals"`
	}{debts, ledger.TotalOutstanding(debts)})
}

func (s *Server) exportDebtsHandler(w http.ResponseWriter, r *http.Request) {
	from, to, err := s.debtFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	debts, err := s.ledger.ClientDebts(r.Context(), from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	debts = ledger.SearchDebts(debts, r.URL.Query().Get("q"))
	f, err := export.DebtsWorkbook(debts, ledger.TotalOutstanding(debts))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.sendWorkbook(w, r, f, "creances.xlsx")
}

func pathYear(r *http.Request) (int, error) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid year", errBadRequest)
	}
	return year, nil
}

func (s *Server) monthlyReportHandler(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	months, err := s.ledger.MonthlyReport(r.Context(), year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, months)
}

func (s *Server) exportMonthlyHandler(w http.ResponseWriter, r *http.Request) {
	year, err := pathYear(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	months, err := s.ledger.MonthlyReport(r.Context(), year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := export.MonthlyWorkbook(year, months)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.sendWorkbook(w, r, f, fmt.Sprintf("rapport-mensuel-%d.xlsx", year))
}

func (s *Server) yearlyReportHandler(w http.ResponseWriter, r *http.Request) {
	years, err := s.ledger.YearlyReport(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, years)
}

func (s *Server) exportYearlyHandler(w http.ResponseWriter, r *http.Request) {
	years, err := s.ledger.YearlyReport(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := export.YearlyWorkbook(years)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.sendWorkbook(w, r, f, "rapport-annuel.xlsx")
}

// periodQuery reads ?period= with the optional ?from= and ?to= of a
// custom period.
func (s *Server) periodQuery(r *http.Request) (ledger.PeriodKind, *time.Time, *time.Time, error) {
	loc := s.ledger.Location()
	from, err := queryDate(r, "from", loc)
	if err != nil {
		return "", nil, nil, err
	}
	to, err := queryDate(r, "to", loc)
	if err != nil {
		return "", nil, nil, err
	}
	return ledger.PeriodKind(r.URL.Query().Get("period")), from, to, nil
}

func (s *Server) statisticsHandler(w http.ResponseWriter, r *http.Request) {
	period, from, to, err := s.periodQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	stats, err := s.ledger.Statistics(r.Context(), period, from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) exportStatisticsHandler(w http.ResponseWriter, r *http.Request) {
	period, from, to, err := s.periodQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.ledger.AccountingReport(r.Context(), period, from, to)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := export.AccountingWorkbook(report, s.ledger.Location())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.sendWorkbook(w, r, f, "rapport-comptable.xlsx")
}

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	d, err := s.ledger.Dashboard(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) sendWorkbook(w http.ResponseWriter, r *http.Request, f *excelize.File, filename string) {
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	attachment(w, export.ContentType, filename)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
