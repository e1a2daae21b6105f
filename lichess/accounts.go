package lichess

import (
	"context"
	"net/http"
	"net/url"
)

type Account struct {
	ID       string
	Username string
	Title    string
	Profile  Profile

	Engine   bool
	Disabled bool

	CreatedAt int64
	SeenAt    int64
}

func (account *Account) IsBot() bool {
	return account.Title == "BOT"
}

type Profile struct {
	FirstName string
	LastName  string
	Country   string
}

func (lc *LichessClient) GetAccount(ctx context.Context) (*Account, error) {
	res := Account{}
	if err := lc.doJSONRequest(ctx, http.MethodGet, "/api/account", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (lc *LichessClient) GetUser(ctx context.Context, username string) (*Account, error) {
	res := Account{}
	if err := lc.doJSONRequest(ctx, http.MethodGet, "/api/user/"+url.PathEscape(username), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// UpgradeAccount turns the account into a bot account. This cannot be undone.
func (lc *LichessClient) UpgradeAccount(ctx context.Context) error {
	return lc.doOkRequest(ctx, http.MethodPost, "/api/bot/account/upgrade", nil)
}
