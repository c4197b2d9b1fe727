package model

import "time"

// ReportStatus は通報の処理状態を表す。
type ReportStatus string

const (
	// ReportStatusOpen は未処理の通報。
	ReportStatusOpen ReportStatus = "OPEN"
	// ReportStatusResolved は対応済みの通報。
	ReportStatusResolved ReportStatus = "RESOLVED"
	// ReportStatusDismissed は却下された通報。
	ReportStatusDismissed ReportStatus = "DISMISSED"
)

// Report はユーザーからの通報を表す。管理者パネルで処理される。
type Report struct {
	ID           string
	ReporterID   string
	TargetUserID string
	Reason       string
	Details      string
	Status       ReportStatus
	Resolution   string
	ResolvedBy   *string
	ResolvedAt   *time.Time
	CreatedAt    time.Time
}
