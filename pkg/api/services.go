package api

import (
	"context"
	"net/http"
	"strconv"
)

// Domain reads. These are thin JSON shaping over the pipeline; every failure
// path is already handled by the transport stages.

// Leagues lists the tournament tiers.
func (c *Client) Leagues(ctx context.Context) ([]League, error) {
	var leagues []League
	if err := c.Do(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   "/leagues",
	}, &leagues); err != nil {
		return nil, err
	}
	return leagues, nil
}

// League fetches one league by ID.
func (c *Client) League(ctx context.Context, id string) (*League, error) {
	var league League
	if err := c.Do(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   "/leagues/" + id,
	}, &league); err != nil {
		return nil, err
	}
	return &league, nil
}

// Rooms lists the rooms of a league.
func (c *Client) Rooms(ctx context.Context, leagueID string) ([]Room, error) {
	var rooms []Room
	if err := c.Do(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   "/leagues/" + leagueID + "/rooms",
	}, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// JoinRoom enters a room, debiting the entry fee.
func (c *Client) JoinRoom(ctx context.Context, roomID string) error {
	return c.Do(ctx, RequestOptions{
		Method: http.MethodPost,
		Path:   "/rooms/" + roomID + "/join",
	}, nil)
}

// Wallet returns the user's coin balance.
func (c *Client) Wallet(ctx context.Context) (*Wallet, error) {
	var w Wallet
	if err := c.Do(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   "/wallet",
	}, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Leaderboard returns a page of the global leaderboard.
func (c *Client) Leaderboard(ctx context.Context, page, limit int) (*LeaderboardResponse, error) {
	var lb LeaderboardResponse
	if err := c.Do(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   "/leaderboard",
		QueryParams: map[string]string{
			"page":  strconv.Itoa(page),
			"limit": strconv.Itoa(limit),
		},
	}, &lb); err != nil {
		return nil, err
	}
	return &lb, nil
}

// Matches returns a page of the user's match history.
func (c *Client) Matches(ctx context.Context, page, limit int) (*MatchHistoryResponse, error) {
	var history MatchHistoryResponse
	if err := c.Do(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   "/matches/history",
		QueryParams: map[string]string{
			"page":  strconv.Itoa(page),
			"limit": strconv.Itoa(limit),
		},
	}, &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// CoinPackages lists the purchasable coin bundles.
func (c *Client) CoinPackages(ctx context.Context) ([]CoinPackage, error) {
	var packages []CoinPackage
	if err := c.Do(ctx, RequestOptions{
		Method: http.MethodGet,
		Path:   "/coin-packages",
	}, &packages); err != nil {
		return nil, err
	}
	return packages, nil
}
