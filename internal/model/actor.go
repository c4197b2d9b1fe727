package model

// AuthenticatedActor は認証済みリクエストの実行主体を表す。
// 認証ミドルウェアがセッションからユーザーと関連プロフィールを解決して構築し、
// すべてのサービス呼び出しに明示的に渡される（暗黙のリクエストスコープ状態は持たない）。
type AuthenticatedActor struct {
	UserID   string
	UserType UserType
	Escort   *Escort
	Agency   *Agency
}

// HasEscortProfile はエスコートプロフィールを持つかを返す。
func (a *AuthenticatedActor) HasEscortProfile() bool {
	return a.Escort != nil
}

// HasAgencyProfile はエージェンシープロフィールを持つかを返す。
func (a *AuthenticatedActor) HasAgencyProfile() bool {
	return a.Agency != nil
}
