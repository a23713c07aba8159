package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/crimetracker/crimetracker-api/internal/data"
	domainauth "github.com/crimetracker/crimetracker-api/internal/domain/auth"
	"github.com/crimetracker/crimetracker-api/internal/domain/model"
	"github.com/crimetracker/crimetracker-api/internal/mocks"
	"github.com/crimetracker/crimetracker-api/internal/service"
)

type reportHandlerFixture struct {
	reports  *mocks.MockReportRepository
	comments *mocks.MockCommentRepository
	profiles *mocks.MockProfileRepository
	h        *ReportHandlers
	mux      *http.ServeMux
}

func newReportHandlerFixture(t *testing.T) *reportHandlerFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &reportHandlerFixture{
		reports:  mocks.NewMockReportRepository(ctrl),
		comments: mocks.NewMockCommentRepository(ctrl),
		profiles: mocks.NewMockProfileRepository(ctrl),
	}
	f.h = &ReportHandlers{
		Svc: service.NewReportService(service.ReportServiceOptions{
			Reports:  f.reports,
			Comments: f.comments,
			Profiles: f.profiles,
		}),
		Logger: discardLogger(),
	}
	// A mux so r.PathValue is populated.
	f.mux = http.NewServeMux()
	f.mux.HandleFunc("GET /api/reports", f.h.List)
	f.mux.HandleFunc("POST /api/reports", f.h.Create)
	f.mux.HandleFunc("GET /api/reports/{id}", f.h.Get)
	f.mux.HandleFunc("DELETE /api/reports/{id}", f.h.Delete)
	f.mux.HandleFunc("POST /api/reports/{id}/comments", f.h.AddComment)
	return f
}

func (f *reportHandlerFixture) serve(r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, r)
	return w
}

func ownedReport() *model.Report {
	return &model.Report{
		ID:             "r1",
		OwnerSubjectID: userIdentity.SubjectID,
		OwnerEmail:     userIdentity.Email,
		Type:           "Theft",
		Description:    "my mobile phone was stolen at the station",
	}
}

func TestReportHandlers_Create(t *testing.T) {
	f := newReportHandlerFixture(t)
	f.reports.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *model.CreateReportRequest) (*model.Report, error) {
			assert.Equal(t, userIdentity.SubjectID, req.OwnerSubjectID)
			return &model.Report{ID: "r1", OwnerSubjectID: req.OwnerSubjectID, Type: req.Type}, nil
		})

	w := f.serve(withIdentity(apiRequest(http.MethodPost, "/api/reports",
		`{"type":"Theft","description":"bike taken","location":"Main St"}`), userIdentity))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "r1", decodeBody[model.Report](t, w).ID)
}

func TestReportHandlers_Create_Validation(t *testing.T) {
	f := newReportHandlerFixture(t)

	w := f.serve(withIdentity(apiRequest(http.MethodPost, "/api/reports", `{"type":"Theft"}`), userIdentity))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.serve(withIdentity(apiRequest(http.MethodPost, "/api/reports", `{"type":"Theft","owner":"x"}`), userIdentity))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_json", decodeBody[errorBody](t, w).Error)
}

func TestReportHandlers_List_ScopesToCaller(t *testing.T) {
	f := newReportHandlerFixture(t)
	f.reports.EXPECT().List(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, opts model.ReportListOptions) ([]*model.Report, error) {
			require.NotNil(t, opts.OwnerSubjectID)
			assert.Equal(t, userIdentity.SubjectID, *opts.OwnerSubjectID)
			require.NotNil(t, opts.Type)
			assert.Equal(t, "Theft", *opts.Type)
			assert.Equal(t, 10, opts.Limit)
			return nil, nil
		})

	w := f.serve(withIdentity(apiRequest(http.MethodGet, "/api/reports?type=Theft&limit=10", ""), userIdentity))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestReportHandlers_List_BadDate(t *testing.T) {
	f := newReportHandlerFixture(t)

	w := f.serve(withIdentity(apiRequest(http.MethodGet, "/api/reports?date=yesterday", ""), adminIdentity))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "date", decodeBody[errorBody](t, w).Field)
}

func TestReportHandlers_Get(t *testing.T) {
	tests := []struct {
		name       string
		caller     domainauth.Identity
		wantStatus int
		wantMsg    string
	}{
		{"owner", userIdentity, http.StatusOK, ""},
		{"admin", adminIdentity, http.StatusOK, ""},
		{"other user", otherIdentity, http.StatusForbidden, "You can only access your own reports."},
		{"unassigned lawyer", lawyerIdentity, http.StatusForbidden, "You are not authorized to view this case."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newReportHandlerFixture(t)
			f.reports.EXPECT().GetByID(gomock.Any(), "r1").Return(ownedReport(), nil)
			f.comments.EXPECT().ListByReport(gomock.Any(), "r1").Return(nil, nil)

			w := f.serve(withIdentity(apiRequest(http.MethodGet, "/api/reports/r1", ""), tt.caller))
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantStatus == http.StatusOK {
				got := decodeBody[model.ReportDetail](t, w)
				require.NotNil(t, got.Report)
				assert.Equal(t, "r1", got.Report.ID)
				assert.NotEmpty(t, got.OutcomePrediction)
				assert.NotNil(t, got.Comments)
				return
			}
			assert.Equal(t, tt.wantMsg, decodeBody[errorBody](t, w).Message)
		})
	}
}

func TestReportHandlers_Get_NotFound(t *testing.T) {
	f := newReportHandlerFixture(t)
	f.reports.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, data.ErrReportNotFound)
	f.comments.EXPECT().ListByReport(gomock.Any(), "missing").Return(nil, nil).AnyTimes()

	w := f.serve(withIdentity(apiRequest(http.MethodGet, "/api/reports/missing", ""), adminIdentity))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportHandlers_Delete(t *testing.T) {
	f := newReportHandlerFixture(t)
	f.reports.EXPECT().GetByID(gomock.Any(), "r1").Return(ownedReport(), nil).Times(2)
	f.reports.EXPECT().Delete(gomock.Any(), "r1").Return(true, nil)

	w := f.serve(withIdentity(apiRequest(http.MethodDelete, "/api/reports/r1", ""), userIdentity))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.serve(withIdentity(apiRequest(http.MethodDelete, "/api/reports/r1", ""), otherIdentity))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReportHandlers_AddComment_RequiresWorker(t *testing.T) {
	f := newReportHandlerFixture(t)
	f.reports.EXPECT().GetByID(gomock.Any(), "r1").Return(ownedReport(), nil)

	w := f.serve(withIdentity(apiRequest(http.MethodPost, "/api/reports/r1/comments", `{"body":"hello"}`), userIdentity))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReportHandlers_NoIdentity(t *testing.T) {
	f := newReportHandlerFixture(t)

	w := f.serve(apiRequest(http.MethodGet, "/api/reports", ""))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
