package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	log "github.com/sirupsen/logrus"
)

type account struct {
	Username string
	Password string
	Token    string
}

type client struct {
	base string
	http *http.Client
}

func main() {
	gofakeit.Seed(time.Now().UnixNano())

	base := strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/")
	n, err := strconv.Atoi(getEnv("SEED_USERS", "5"))
	if err != nil || n < 2 {
		n = 5
	}
	c := &client{base: base, http: &http.Client{Timeout: 10 * time.Second}}

	// --- USERS ---
	var users []*account
	for i := 0; i < n; i++ {
		a := &account{
			Username: strings.ToLower(gofakeit.Username()) + strconv.Itoa(gofakeit.Number(100, 999)),
			Password: gofakeit.Password(true, true, true, false, false, 12),
		}
		if err := c.register(a); err != nil {
			log.WithError(err).WithField("username", a.Username).Warn("register failed")
			continue
		}
		users = append(users, a)
	}
	if len(users) < 2 {
		log.Fatal("not enough users registered, aborting seeding process")
	}

	// --- FOLLOWS ---
	for i, a := range users {
		for _, j := range []int{(i + 1) % len(users), (i + 2) % len(users)} {
			if j == i {
				continue
			}
			c.call(a, http.MethodPost, "/follows", map[string]string{"username": users[j].Username}, nil)
		}
	}

	// --- TICKETS AND REVIEWS ---
	var tickets []uint
	for _, a := range users {
		var t struct {
			ID uint `json:"id"`
		}
		c.call(a, http.MethodPost, "/tickets", map[string]string{
			"title":       gofakeit.BookTitle(),
			"description": "Looking for reviews of this book by " + gofakeit.BookAuthor(),
		}, &t)
		if t.ID != 0 {
			tickets = append(tickets, t.ID)
		}

		c.call(a, http.MethodPost, "/reviews", map[string]any{
			"ticket": map[string]string{"title": gofakeit.BookTitle()},
			"review": randomReview(),
		}, nil)
	}
	for i, a := range users {
		if len(tickets) == 0 {
			break
		}
		// review someone else's ticket
		id := tickets[(i+1)%len(tickets)]
		c.call(a, http.MethodPost, fmt.Sprintf("/tickets/%d/reviews", id), randomReview(), nil)
	}

	// --- FEED ---
	var page struct {
		Total int `json:"total"`
	}
	c.call(users[0], http.MethodGet, "/feed", nil, &page)
	log.WithFields(log.Fields{"username": users[0].Username, "items": page.Total}).Info("feed ready")
}

func randomReview() map[string]any {
	return map[string]any{
		"headline": gofakeit.Sentence(4),
		"rating":   gofakeit.Number(0, 5),
		"body":     gofakeit.Paragraph(1, 3, 12, " "),
	}
}

func (c *client) register(a *account) error {
	if err := c.post("/auth/register", "", map[string]string{
		"username":         a.Username,
		"password":         a.Password,
		"password_confirm": a.Password,
	}, nil); err != nil {
		return err
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.post("/auth/login", "", map[string]string{
		"username": a.Username,
		"password": a.Password,
	}, &out); err != nil {
		return err
	}
	a.Token = out.AccessToken
	log.WithField("username", a.Username).Info("registered")
	return nil
}

func (c *client) call(a *account, method, path string, body, out any) {
	if err := c.do(method, path, a.Token, body, out); err != nil {
		log.WithFields(log.Fields{"method": method, "path": path, "username": a.Username}).
			WithError(err).Warn("request failed")
		return
	}
	log.WithFields(log.Fields{"method": method, "path": path, "username": a.Username}).Debug("ok")
}

func (c *client) post(path, token string, body, out any) error {
	return c.do(http.MethodPost, path, token, body, out)
}

func (c *client) do(method, path, token string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
