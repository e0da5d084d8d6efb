package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRequestSubmitted(t *testing.T) {
	// Reset the counter before test
	RequestsSubmittedTotal.Reset()

	RecordRequestSubmitted("leave")
	RecordRequestSubmitted("leave")
	RecordRequestSubmitted("overtime")

	count := testutil.ToFloat64(RequestsSubmittedTotal.WithLabelValues("leave"))
	if count != 2 {
		t.Errorf("Expected leave submissions = 2, got %f", count)
	}

	count = testutil.ToFloat64(RequestsSubmittedTotal.WithLabelValues("overtime"))
	if count != 1 {
		t.Errorf("Expected overtime submissions = 1, got %f", count)
	}
}

func TestRecordDecision(t *testing.T) {
	DecisionsTotal.Reset()
	DecisionsDeniedTotal.Reset()

	RecordDecision("leave", "APPROVED", "MANAGER")
	RecordDecision("leave", "APPROVED", "MANAGER")
	RecordDecision("overtime", "REJECTED", "ADMIN")
	RecordDecisionDenied("leave", "forbidden")

	count := testutil.ToFloat64(DecisionsTotal.WithLabelValues("leave", "APPROVED", "MANAGER"))
	if count != 2 {
		t.Errorf("Expected manager leave approvals = 2, got %f", count)
	}

	count = testutil.ToFloat64(DecisionsDeniedTotal.WithLabelValues("leave", "forbidden"))
	if count != 1 {
		t.Errorf("Expected forbidden denials = 1, got %f", count)
	}
}

func TestRecordInvalidRequest(t *testing.T) {
	RequestsRejectedInputTotal.Reset()

	RecordInvalidRequest("leave", "invalid_range")

	count := testutil.ToFloat64(RequestsRejectedInputTotal.WithLabelValues("leave", "invalid_range"))
	if count != 1 {
		t.Errorf("Expected invalid range count = 1, got %f", count)
	}
}

func TestSetPendingRequests(t *testing.T) {
	PendingRequests.Reset()

	SetPendingRequests("leave", 7)
	SetPendingRequests("leave", 3)

	value := testutil.ToFloat64(PendingRequests.WithLabelValues("leave"))
	if value != 3 {
		t.Errorf("Expected pending leave gauge = 3, got %f", value)
	}
}

func TestObserveHistograms(t *testing.T) {
	ObserveLeaveDays(5)
	ObserveOvertimeHours(2)
	ObserveSchedulerJobDuration(0.5)

	if n := testutil.CollectAndCount(LeaveDaysRequested); n != 1 {
		t.Errorf("Expected 1 leave days metric, got %d", n)
	}
	if n := testutil.CollectAndCount(OvertimeHoursRequested); n != 1 {
		t.Errorf("Expected 1 overtime hours metric, got %d", n)
	}
}

func TestSchedulerMetrics(t *testing.T) {
	SchedulerJobsRunTotal.Reset()
	SchedulerNotificationsFailedTotal.Reset()

	RecordSchedulerJobRun("success")
	RecordSchedulerNotificationFailed("webhook")
	SetSchedulerLastRun()

	if count := testutil.ToFloat64(SchedulerJobsRunTotal.WithLabelValues("success")); count != 1 {
		t.Errorf("Expected 1 successful job run, got %f", count)
	}
	if count := testutil.ToFloat64(SchedulerNotificationsFailedTotal.WithLabelValues("webhook")); count != 1 {
		t.Errorf("Expected 1 webhook failure, got %f", count)
	}
	if ts := testutil.ToFloat64(SchedulerLastRunTimestamp); ts <= 0 {
		t.Errorf("Expected last run timestamp to be set, got %f", ts)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDurationSeconds.Reset()

	RecordHTTPRequest("GET", "/api/v1/leaves", "200", 0.01)
	RecordHTTPRequest("GET", "/api/v1/leaves", "200", 0.02)

	if count := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/leaves", "200")); count != 2 {
		t.Errorf("Expected 2 requests, got %f", count)
	}
}

func TestDashboardAndLoginCounters(t *testing.T) {
	DashboardCacheTotal.Reset()
	LoginAttemptsTotal.Reset()

	RecordDashboardCache("hit")
	RecordDashboardCache("miss")
	RecordLogin("failure")

	if count := testutil.ToFloat64(DashboardCacheTotal.WithLabelValues("hit")); count != 1 {
		t.Errorf("Expected 1 cache hit, got %f", count)
	}
	if count := testutil.ToFloat64(LoginAttemptsTotal.WithLabelValues("failure")); count != 1 {
		t.Errorf("Expected 1 failed login, got %f", count)
	}
}
