package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrimpsizemoose/qcm/internal/app"
	"github.com/shrimpsizemoose/qcm/internal/mailer"
	"github.com/shrimpsizemoose/qcm/internal/models"
)

const testConfig = `
[server]
port = ":0"
mode = "test"
templates_dir = "../../web/templates"
static_dir = "../../web/static"

[database]
dsn = ":memory:"

[session]
secret = "0123456789abcdef0123456789abcdef"

[rate_limit]
requests = 0
`

type recordingMailer struct {
	mu   sync.Mutex
	sent []models.ContactMessage
	err  error
}

func (m *recordingMailer) SendContact(_ context.Context, msg *models.ContactMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, *msg)
	return nil
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testSite struct {
	service *app.Service
	server  *httptest.Server
	mailer  *recordingMailer
}

func setupSite(t *testing.T) *testSite {
	config, err := app.ParseConfig([]byte(testConfig))
	require.NoError(t, err)

	service, err := app.NewServiceFromConfig(context.Background(), config)
	require.NoError(t, err)
	require.NoError(t, service.Initialize(context.Background()))

	mail := &recordingMailer{}
	service.Mailer = mail

	server := httptest.NewServer(NewRouter(service))
	t.Cleanup(func() {
		server.Close()
		service.Close()
	})

	return &testSite{service: service, server: server, mailer: mail}
}

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (s *testSite) browser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: s.server.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type page struct {
	status   int
	location string
	body     string
}

func (b *browser) read(resp *http.Response, err error) page {
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return page{
		status:   resp.StatusCode,
		location: resp.Header.Get("Location"),
		body:     string(body),
	}
}

func (b *browser) get(path string) page {
	return b.read(b.client.Get(b.base + path))
}

func (b *browser) post(path string, form url.Values) page {
	return b.read(b.client.PostForm(b.base+path, form))
}

// follow performs p and then the GET its redirect points to.
func (b *browser) follow(p page) page {
	require.Equal(b.t, http.StatusSeeOther, p.status, p.body)
	return b.get(p.location)
}

func (b *browser) register(email, password string) {
	p := b.post("/inscription", url.Values{
		"email":            {email},
		"password":         {password},
		"confirm_password": {password},
	})
	require.Equal(b.t, http.StatusSeeOther, p.status)
	require.Equal(b.t, "/cours", p.location)
}

func TestPublicPages(t *testing.T) {
	site := setupSite(t)
	b := site.browser(t)

	for _, path := range []string{"/", "/cours", "/professeur", "/detail-cours", "/contact", "/connexion", "/inscription"} {
		t.Run(path, func(t *testing.T) {
			p := b.get(path)
			assert.Equal(t, http.StatusOK, p.status)
			assert.Contains(t, p.body, "Cours de Python")
		})
	}

	t.Run("course list shows chapters", func(t *testing.T) {
		p := b.get("/cours")
		assert.Contains(t, p.body, `href="/qcm/6"`)
	})

	t.Run("unknown page", func(t *testing.T) {
		p := b.get("/nulle-part")
		assert.Equal(t, http.StatusNotFound, p.status)
		assert.Contains(t, p.body, "Page introuvable")
	})

	t.Run("health", func(t *testing.T) {
		p := b.get("/healthz")
		assert.Equal(t, http.StatusOK, p.status)
		assert.JSONEq(t, `{"status":"ok"}`, p.body)
	})

	t.Run("metrics", func(t *testing.T) {
		p := b.get("/metrics")
		assert.Equal(t, http.StatusOK, p.status)
		assert.Contains(t, p.body, "http_request_duration_seconds")
	})
}

func TestProtectedPagesRequireLogin(t *testing.T) {
	site := setupSite(t)
	b := site.browser(t)

	for _, path := range []string{"/tableau-de-bord", "/qcm/1", "/chapitre/1", "/qcm/1/resultat/1"} {
		t.Run(path, func(t *testing.T) {
			p := b.get(path)
			assert.Equal(t, http.StatusSeeOther, p.status)
			assert.Equal(t, "/connexion", p.location)
		})
	}

	t.Run("flash shown once", func(t *testing.T) {
		p := b.follow(b.get("/tableau-de-bord"))
		assert.Contains(t, p.body, "Vous devez être connecté pour accéder à cette page.")

		p = b.get("/connexion")
		assert.NotContains(t, p.body, "Vous devez être connecté")
	})

	t.Run("unreadable session cookie", func(t *testing.T) {
		other := site.browser(t)
		base, err := url.Parse(site.server.URL)
		require.NoError(t, err)
		other.client.Jar.SetCookies(base, []*http.Cookie{{
			Name:  site.service.Config.Session.CookieName,
			Value: "not-a-token",
			Path:  "/",
		}})

		assert.Equal(t, http.StatusOK, other.get("/cours").status)
		p := other.get("/tableau-de-bord")
		assert.Equal(t, http.StatusSeeOther, p.status)
		assert.Equal(t, "/connexion", p.location)
	})

	t.Run("submit without session", func(t *testing.T) {
		p := b.post("/qcm/1/submit", url.Values{})
		assert.Equal(t, http.StatusSeeOther, p.status)
		assert.Equal(t, "/connexion", p.location)
	})
}

func TestAccounts(t *testing.T) {
	site := setupSite(t)
	b := site.browser(t)

	b.register("a@x.com", "pw1")

	t.Run("registration logs in", func(t *testing.T) {
		p := b.get("/tableau-de-bord")
		assert.Equal(t, http.StatusOK, p.status)
		assert.Contains(t, p.body, "a@x.com")
	})

	t.Run("logout", func(t *testing.T) {
		p := b.follow(b.get("/deconnexion"))
		assert.Contains(t, p.body, "Vous avez été déconnecté.")
		assert.Equal(t, http.StatusSeeOther, b.get("/tableau-de-bord").status)
	})

	t.Run("wrong password", func(t *testing.T) {
		p := b.post("/connexion", url.Values{"email": {"a@x.com"}, "password": {"nope"}})
		assert.Equal(t, "/connexion", p.location)
		assert.Contains(t, b.follow(p).body, "Email ou mot de passe incorrect.")
	})

	t.Run("login", func(t *testing.T) {
		p := b.post("/connexion", url.Values{"email": {"a@x.com"}, "password": {"pw1"}})
		assert.Equal(t, "/cours", p.location)
		assert.Contains(t, b.follow(p).body, "Connexion réussie !")
		assert.Equal(t, http.StatusOK, b.get("/tableau-de-bord").status)
	})

	t.Run("duplicate email", func(t *testing.T) {
		other := site.browser(t)
		p := other.post("/inscription", url.Values{
			"email":            {"a@x.com"},
			"password":         {"pw"},
			"confirm_password": {"pw"},
		})
		assert.Equal(t, "/inscription", p.location)
		assert.Contains(t, other.follow(p).body, "Cette adresse email est déjà utilisée.")
	})

	t.Run("password mismatch", func(t *testing.T) {
		other := site.browser(t)
		p := other.post("/inscription", url.Values{
			"email":            {"c@x.com"},
			"password":         {"pw1"},
			"confirm_password": {"pw2"},
		})
		assert.Contains(t, other.follow(p).body, "Les mots de passe ne correspondent pas.")
	})
}

func TestQuizFlow(t *testing.T) {
	site := setupSite(t)
	b := site.browser(t)
	b.register("a@x.com", "pw1")

	questions, err := site.service.Store.ListQuestions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, questions, 10)

	t.Run("chapter page", func(t *testing.T) {
		p := b.get("/chapitre/1")
		assert.Equal(t, http.StatusOK, p.status)
		assert.Contains(t, p.body, `href="/qcm/1"`)
	})

	t.Run("quiz page lists every question", func(t *testing.T) {
		p := b.get("/qcm/1")
		require.Equal(t, http.StatusOK, p.status)
		for _, q := range questions {
			assert.Contains(t, p.body, fmt.Sprintf(`name="question_%d"`, q.ID))
		}
	})

	t.Run("invalid chapter", func(t *testing.T) {
		p := b.get("/qcm/9")
		assert.Equal(t, "/cours", p.location)
		assert.Contains(t, b.follow(p).body, "Chapitre non valide.")
	})

	form := url.Values{}
	for i, q := range questions {
		if i < 6 {
			form.Set(fmt.Sprintf("question_%d", q.ID), strings.ToLower(q.Answer))
		} else {
			form.Set(fmt.Sprintf("question_%d", q.ID), "X")
		}
	}
	form.Set("question_oops", "A")

	submitted := b.post("/qcm/1/submit", form)
	require.Equal(t, http.StatusSeeOther, submitted.status)
	require.True(t, strings.HasPrefix(submitted.location, "/qcm/1/resultat/"), submitted.location)

	t.Run("result page", func(t *testing.T) {
		p := b.get(submitted.location)
		require.Equal(t, http.StatusOK, p.status)
		assert.Contains(t, p.body, "60 %")
		assert.Contains(t, p.body, "6 bonne(s) réponse(s) sur 10")
		assert.Contains(t, p.body, "Passable")
		assert.Contains(t, p.body, "tier-warning")
	})

	t.Run("dashboard", func(t *testing.T) {
		p := b.get("/tableau-de-bord")
		require.Equal(t, http.StatusOK, p.status)
		assert.Contains(t, p.body, "60 %")
		assert.Contains(t, p.body, submitted.location)
	})

	t.Run("result under another chapter", func(t *testing.T) {
		wrong := strings.Replace(submitted.location, "/qcm/1/", "/qcm/2/", 1)
		p := b.get(wrong)
		assert.Equal(t, "/cours", p.location)
		assert.Contains(t, b.follow(p).body, "Résultat non trouvé.")
	})

	t.Run("result of another student", func(t *testing.T) {
		other := site.browser(t)
		other.register("b@x.com", "pw2")
		p := other.get(submitted.location)
		assert.Equal(t, http.StatusSeeOther, p.status)
		assert.Contains(t, other.follow(p).body, "Résultat non trouvé.")
	})

	t.Run("submit to empty chapter", func(t *testing.T) {
		p := b.post("/qcm/42/submit", form)
		assert.Equal(t, "/cours", p.location)
		assert.Contains(t, b.follow(p).body, "aucune question trouvée")
	})
}

func TestContact(t *testing.T) {
	site := setupSite(t)
	b := site.browser(t)

	t.Run("sent", func(t *testing.T) {
		p := b.post("/contact", url.Values{
			"name":    {" Alice "},
			"email":   {"alice@example.com"},
			"subject": {"Question"},
			"message": {"Bonjour"},
		})
		assert.Equal(t, "/contact", p.location)
		assert.Contains(t, b.follow(p).body, "Message envoyé avec succès ! Merci pour votre message.")

		require.Len(t, site.mailer.sent, 1)
		assert.Equal(t, "Alice", site.mailer.sent[0].Name)
	})

	t.Run("missing field", func(t *testing.T) {
		p := b.post("/contact", url.Values{"name": {"Alice"}, "email": {"alice@example.com"}})
		assert.Contains(t, b.follow(p).body, "Veuillez remplir tous les champs")
		assert.Len(t, site.mailer.sent, 1)
	})

	t.Run("delivery failure", func(t *testing.T) {
		site.mailer.err = mailer.ErrDeliveryFailure
		defer func() { site.mailer.err = nil }()

		p := b.post("/contact", url.Values{
			"name":    {"Alice"},
			"email":   {"alice@example.com"},
			"subject": {"Question"},
			"message": {"Bonjour"},
		})
		assert.Contains(t, b.follow(p).body, "Erreur lors de l&#39;envoi du message.")
	})
}

func TestContactWithoutSMTP(t *testing.T) {
	site := setupSite(t)
	require.Empty(t, site.service.Config.SMTP.Host)
	site.service.Mailer = app.NewMailer(site.service.Config)
	b := site.browser(t)

	p := b.post("/contact", url.Values{
		"name":    {"Alice"},
		"email":   {"alice@example.com"},
		"subject": {"Question"},
		"message": {"Bonjour"},
	})
	assert.Equal(t, "/contact", p.location)

	body := b.follow(p).body
	assert.Contains(t, body, "Erreur lors de l&#39;envoi du message.")
	assert.NotContains(t, body, "Message envoyé avec succès")
}

func TestRateLimiter(t *testing.T) {
	router := gin.New()
	router.POST("/connexion", RateLimiter(2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/connexion", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		statuses = append(statuses, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, statuses)

	req := httptest.NewRequest(http.MethodPost, "/connexion", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code, "other clients keep their own budget")
}
