// Package client is a typed HTTP client for the taskhive API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/and161185/taskhive/internal/convert"
)

// APIError is a non-2xx answer. Msg is the server's user-facing text.
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Msg)
}

// Client talks to one server. It is safe for concurrent use once the token
// is set.
type Client struct {
	r *resty.Client
}

// New constructs Client for baseURL, e.g. http://localhost:8080.
func New(baseURL string, timeout time.Duration) *Client {
	r := resty.New().
		SetBaseURL(baseURL+"/api").
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout).
		SetError(&convert.Msg{})
	return &Client{r: r}
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(tok string) {
	c.r.SetAuthToken(tok)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.r.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() {
		e := &APIError{Status: resp.StatusCode()}
		if m, ok := resp.Error().(*convert.Msg); ok {
			e.Msg = m.Msg
		}
		return e
	}
	return nil
}

// msg performs a request answered by a bare {"msg"} body.
func (c *Client) msg(ctx context.Context, method, path string, body any) (string, error) {
	var m convert.Msg
	if err := c.do(ctx, method, path, body, &m); err != nil {
		return "", err
	}
	return m.Msg, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// RegisterResult is the body of a successful registration.
type RegisterResult struct {
	Msg  string       `json:"msg"`
	User convert.User `json:"user"`
}

func (c *Client) Register(ctx context.Context, username, password string) (RegisterResult, error) {
	var out RegisterResult
	err := c.do(ctx, http.MethodPost, "/users", convert.Credentials{Username: username, Password: password}, &out)
	return out, err
}

// Login authenticates and, on success, stores the token on the client.
func (c *Client) Login(ctx context.Context, username, password string) (convert.Login, error) {
	var out convert.Login
	if err := c.do(ctx, http.MethodPost, "/login", convert.Credentials{Username: username, Password: password}, &out); err != nil {
		return out, err
	}
	c.SetToken(out.Token)
	return out, nil
}

func (c *Client) Logout(ctx context.Context) (string, error) {
	return c.msg(ctx, http.MethodPost, "/logout", nil)
}

func (c *Client) Me(ctx context.Context) (convert.User, error) {
	var out convert.User
	err := c.do(ctx, http.MethodGet, "/session", nil, &out)
	return out, err
}

func (c *Client) DeleteAccount(ctx context.Context) (string, error) {
	return c.msg(ctx, http.MethodDelete, "/users", nil)
}

// ProjectResult is the body of a successful project creation.
type ProjectResult struct {
	Msg     string          `json:"msg"`
	Project convert.Project `json:"project"`
}

func (c *Client) CreateProject(ctx context.Context, name string) (ProjectResult, error) {
	var out ProjectResult
	err := c.do(ctx, http.MethodPost, "/projects", convert.ProjectName{Name: name}, &out)
	return out, err
}

// ProjectByName resolves a project the caller can see.
func (c *Client) ProjectByName(ctx context.Context, name string) (convert.Project, error) {
	var out convert.Project
	err := c.do(ctx, http.MethodGet, "/projects?name="+url.QueryEscape(name), nil, &out)
	return out, err
}

func (c *Client) MyProjects(ctx context.Context) ([]convert.Project, error) {
	var out []convert.Project
	err := c.do(ctx, http.MethodGet, "/user/projects", nil, &out)
	return out, err
}

func (c *Client) DeleteProject(ctx context.Context, id string) (string, error) {
	return c.msg(ctx, http.MethodDelete, "/projects/"+id, nil)
}

func (c *Client) AddMember(ctx context.Context, project, username string) (string, error) {
	return c.msg(ctx, http.MethodPost, "/projects/"+project+"/members", convert.MemberAdd{Username: username})
}

func (c *Client) Members(ctx context.Context, project string) ([]string, error) {
	var out []string
	err := c.do(ctx, http.MethodGet, "/projects/"+project+"/members", nil, &out)
	return out, err
}

func (c *Client) ProjectTasks(ctx context.Context, project string) ([]convert.TaskView, error) {
	var out []convert.TaskView
	err := c.do(ctx, http.MethodGet, "/projects/"+project+"/tasks", nil, &out)
	return out, err
}

func (c *Client) CreateTask(ctx context.Context, in convert.NewTask) (convert.TaskCreated, error) {
	var out convert.TaskCreated
	err := c.do(ctx, http.MethodPost, "/tasks", in, &out)
	return out, err
}

func (c *Client) MyTasks(ctx context.Context) ([]convert.TaskView, error) {
	var out []convert.TaskView
	err := c.do(ctx, http.MethodGet, "/user/tasks", nil, &out)
	return out, err
}

func (c *Client) Task(ctx context.Context, id string) (convert.Task, error) {
	var out convert.Task
	err := c.do(ctx, http.MethodGet, "/tasks/"+id, nil, &out)
	return out, err
}

func (c *Client) Complete(ctx context.Context, id string) (convert.TaskCompleted, error) {
	var out convert.TaskCompleted
	err := c.do(ctx, http.MethodPost, "/tasks/"+id+"/complete", nil, &out)
	return out, err
}

func (c *Client) Incomplete(ctx context.Context, id string) (string, error) {
	return c.msg(ctx, http.MethodPost, "/tasks/"+id+"/incomplete", nil)
}

func (c *Client) CanStart(ctx context.Context, id string) (bool, error) {
	var out struct {
		CanStart bool `json:"can_start"`
	}
	err := c.do(ctx, http.MethodGet, "/tasks/"+id+"/start", nil, &out)
	return out.CanStart, err
}

func (c *Client) Deadline(ctx context.Context, id string) (convert.DeadlineStatus, error) {
	var out convert.DeadlineStatus
	err := c.do(ctx, http.MethodGet, "/tasks/"+id+"/deadline", nil, &out)
	return out, err
}

// AddDependency makes dependent wait for independent.
func (c *Client) AddDependency(ctx context.Context, independent, dependent string) (string, error) {
	return c.msg(ctx, http.MethodPost, "/tasks/"+dependent+"/dependencies", convert.DependencyAdd{Independent: independent})
}

func (c *Client) RemoveDependency(ctx context.Context, independent, dependent string) (string, error) {
	return c.msg(ctx, http.MethodDelete, "/tasks/"+dependent+"/dependencies/"+independent, nil)
}

// Rewards lists the caller's rewards; project and task narrow when non-empty.
func (c *Client) Rewards(ctx context.Context, project, task string) ([]convert.Reward, error) {
	q := url.Values{}
	if project != "" {
		q.Set("project", project)
	}
	if task != "" {
		q.Set("task", task)
	}
	path := "/rewards"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []convert.Reward
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) NotifyAssignee(ctx context.Context, task, message string) (string, error) {
	return c.msg(ctx, http.MethodPost, "/tasks/"+task+"/notify", convert.Message{Message: message})
}

func (c *Client) NotifyTeam(ctx context.Context, project, message string) (string, error) {
	return c.msg(ctx, http.MethodPost, "/projects/"+project+"/notify-team", convert.Message{Message: message})
}

func (c *Client) Notifications(ctx context.Context) ([]convert.Notification, error) {
	var out []convert.Notification
	err := c.do(ctx, http.MethodGet, "/notifications", nil, &out)
	return out, err
}

func (c *Client) Dismiss(ctx context.Context, id string) (string, error) {
	return c.msg(ctx, http.MethodDelete, "/notifications/"+id, nil)
}
