package models

// Submission statuses reported by the grading server.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusError    = "error"
)

// SubmissionRequest is the POST /api/submit body.
type SubmissionRequest struct {
	ChallengeID     int    `json:"challenge_id"`
	Solution        string `json:"solution"`
	ParticipantName string `json:"participant_name"`
}

// SubmissionReceipt is the successful POST /api/submit response.
type SubmissionReceipt struct {
	SubmissionID   string    `json:"submission_id"`
	ChallengeTitle string    `json:"challenge_title"`
	Status         string    `json:"status"`
	Score          int       `json:"score"`
	Timestamp      Timestamp `json:"timestamp"`
}

// Submission is one entry in a session's own submission history.
type Submission struct {
	ID             string    `json:"id"`
	ChallengeID    int       `json:"challenge_id"`
	ChallengeTitle string    `json:"challenge_title"`
	Status         string    `json:"status"`
	Score          int       `json:"score"`
	SubmittedAt    Timestamp `json:"submitted_at"`
}

// SubmissionFromReceipt builds the session history entry for a receipt.
func SubmissionFromReceipt(challengeID int, r SubmissionReceipt) Submission {
	return Submission{
		ID:             r.SubmissionID,
		ChallengeID:    challengeID,
		ChallengeTitle: r.ChallengeTitle,
		Status:         r.Status,
		Score:          r.Score,
		SubmittedAt:    r.Timestamp,
	}
}

// SubmissionDetail is the GET /api/submissions/{id} response.
type SubmissionDetail struct {
	ID             string    `json:"id"`
	ChallengeID    int       `json:"challenge_id"`
	ChallengeTitle string    `json:"challenge_title"`
	Status         string    `json:"status"`
	Score          int       `json:"score"`
	SubmittedAt    Timestamp `json:"submitted_at"`
	ErrorMessage   string    `json:"error_message,omitempty"`
}
