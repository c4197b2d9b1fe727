package model

import "time"

// NotificationType は通知の種別を表す。
type NotificationType string

const (
	// NotificationTypeMembershipRequest はメンバーシップ申請の通知。
	NotificationTypeMembershipRequest NotificationType = "MEMBERSHIP_REQUEST"
	// NotificationTypeMembershipApproved は申請承認の通知。
	NotificationTypeMembershipApproved NotificationType = "MEMBERSHIP_APPROVED"
	// NotificationTypeMembershipRejected は申請拒否の通知。
	NotificationTypeMembershipRejected NotificationType = "MEMBERSHIP_REJECTED"
	// NotificationTypeMembershipLeft はエスコート脱退の通知。
	NotificationTypeMembershipLeft NotificationType = "MEMBERSHIP_LEFT"
	// NotificationTypeInvitation は勧誘受信の通知。
	NotificationTypeInvitation NotificationType = "INVITATION"
	// NotificationTypeInvitationAccepted は勧誘承諾の通知。
	NotificationTypeInvitationAccepted NotificationType = "INVITATION_ACCEPTED"
	// NotificationTypeInvitationRejected は勧誘辞退の通知。
	NotificationTypeInvitationRejected NotificationType = "INVITATION_REJECTED"
	// NotificationTypeVerification は認証完了・更新の通知。
	NotificationTypeVerification NotificationType = "VERIFICATION"
	// NotificationTypeModeration はBAN等の管理者操作の通知。
	NotificationTypeModeration NotificationType = "MODERATION"
)

// Notification は状態遷移に伴ってユーザーへ送られる通知レコードを表す。
// ライフサイクル自体はこのレコードを参照しない（副作用専用）。
type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Body      string
	IsRead    bool
	CreatedAt time.Time
}
