package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskhub/internal/auth"
	"taskhub/internal/handler"
	"taskhub/internal/lifecycle"
	"taskhub/internal/middleware"
	"taskhub/internal/model"
	"taskhub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const deleteSecret = "hard-delete-secret"

type api struct {
	router  *gin.Engine
	db      *gorm.DB
	manager string
	user    string
	userID  uuid.UUID
	other   string
}

func setupAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, repository.Migrate(db))

	engine := lifecycle.New(
		repository.NewTaskRepository(db),
		repository.NewProjectRepository(db),
		repository.NewActivityRepository(db),
		repository.NewTransactor(db),
		nil,
		deleteSecret,
	)
	log := zerolog.Nop()
	tasks := handler.NewTaskHandler(engine, log)
	projects := handler.NewProjectHandler(engine, log)
	activity := handler.NewActivityHandler(engine, log)

	r := gin.New()
	g := r.Group("/api", middleware.JWTAuthMiddleware(tokenSecret))
	g.POST("/tasks", tasks.Create)
	g.GET("/tasks/my", tasks.ListMine)
	g.GET("/tasks/created", tasks.ListCreated)
	g.GET("/tasks/trash", tasks.ListTrash)
	g.GET("/tasks/:id", tasks.GetByID)
	g.PUT("/tasks/:id", tasks.Update)
	g.PUT("/tasks/:id/trash", tasks.Trash)
	g.PUT("/tasks/:id/restore", tasks.Restore)
	g.DELETE("/tasks/:id/permanent", tasks.Delete)
	g.POST("/projects", projects.Create)
	g.GET("/projects", projects.GetAll)
	g.GET("/projects/trash", projects.ListTrash)
	g.PUT("/projects/:id", projects.Update)
	g.PUT("/projects/:id/trash", projects.Trash)
	g.PUT("/projects/:id/restore", projects.Restore)
	g.DELETE("/projects/:id/permanent", projects.Delete)
	g.GET("/activity", activity.List)
	g.GET("/activity/user/:userId", activity.ListByUser)
	g.GET("/activity/trash", activity.ListTrash)
	g.PUT("/activity/:id/trash", activity.Trash)
	g.PUT("/activity/:id/restore", activity.Restore)
	g.DELETE("/activity/:id/permanent", activity.Delete)

	issuer := auth.NewTokenIssuer(tokenSecret, time.Hour)
	token := func(id uuid.UUID, role model.Role) string {
		s, err := issuer.GenerateToken(id, role)
		require.NoError(t, err)
		return s
	}

	userID := uuid.New()
	return &api{
		router:  r,
		db:      db,
		manager: token(uuid.New(), model.RoleManager),
		user:    token(userID, model.RoleUser),
		userID:  userID,
		other:   token(uuid.New(), model.RoleUser),
	}
}

func (a *api) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	a.router.ServeHTTP(resp, req)
	return resp
}

func (a *api) createTask(t *testing.T, title string) model.Task {
	t.Helper()
	resp := a.do("POST", "/api/tasks", a.manager, gin.H{
		"title":      title,
		"assignedTo": a.userID.String(),
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var task model.Task
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &task))
	return task
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v), resp.Body.String())
	return v
}

type pagedTasks struct {
	Tasks      []model.Task `json:"tasks"`
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalPages int          `json:"totalPages"`
	Total      int64        `json:"total"`
}

type pagedLogs struct {
	Logs       []model.ActivityLog `json:"logs"`
	Page       int                 `json:"page"`
	TotalPages int                 `json:"totalPages"`
	Total      int64               `json:"total"`
}

func TestCreateTask_Defaults(t *testing.T) {
	a := setupAPI(t)

	task := a.createTask(t, "  Write report  ")

	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, model.TaskTodo, task.Status)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, a.userID, task.AssignedTo)
	assert.False(t, task.IsTrashed)
}

func TestCreateTask_RejectedForUsers(t *testing.T) {
	a := setupAPI(t)

	resp := a.do("POST", "/api/tasks", a.user, gin.H{"title": "x", "assignedTo": a.userID.String()})

	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "Not allowed", decode[map[string]string](t, resp)["error"])
}

func TestCreateTask_Validation(t *testing.T) {
	a := setupAPI(t)

	resp := a.do("POST", "/api/tasks", a.manager, gin.H{"title": "   ", "assignedTo": a.userID.String()})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = a.do("POST", "/api/tasks", a.manager, gin.H{"title": "x", "assignedTo": "nope"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = a.do("POST", "/api/tasks", a.manager, gin.H{"title": "x", "assignedTo": a.userID.String(), "priority": "urgent"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUpdateTask_AssigneeChangesOnlyStatus(t *testing.T) {
	a := setupAPI(t)
	task := a.createTask(t, "Fix bug")

	resp := a.do("PUT", "/api/tasks/"+task.ID.String(), a.user, gin.H{
		"status": "in_progress",
		"title":  "Hijacked",
	})

	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decode[model.Task](t, resp)
	assert.Equal(t, model.TaskInProgress, updated.Status)
	assert.Equal(t, "Fix bug", updated.Title)
}

func TestUpdateTask_OtherUserForbidden(t *testing.T) {
	a := setupAPI(t)
	task := a.createTask(t, "Fix bug")

	resp := a.do("PUT", "/api/tasks/"+task.ID.String(), a.other, gin.H{"status": "done"})

	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestUpdateTask_ClearDueDateWithNull(t *testing.T) {
	a := setupAPI(t)
	task := a.createTask(t, "Plan")

	resp := a.do("PUT", "/api/tasks/"+task.ID.String(), a.manager, gin.H{"dueDate": "2024-05-01T00:00:00Z"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, decode[model.Task](t, resp).DueDate)

	resp = a.do("PUT", "/api/tasks/"+task.ID.String(), a.manager, gin.H{"dueDate": nil})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Nil(t, decode[model.Task](t, resp).DueDate)
}

func TestTaskRoutes_NotFoundAndBadID(t *testing.T) {
	a := setupAPI(t)

	resp := a.do("GET", "/api/tasks/"+uuid.NewString(), a.manager, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Task not found", decode[map[string]string](t, resp)["error"])

	resp = a.do("GET", "/api/tasks/not-a-uuid", a.manager, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTrashRestoreTask(t *testing.T) {
	a := setupAPI(t)
	task := a.createTask(t, "Cleanup")

	resp := a.do("PUT", "/api/tasks/"+task.ID.String()+"/trash", a.user, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	trashed := decode[model.Task](t, resp)
	assert.True(t, trashed.IsTrashed)
	require.NotNil(t, trashed.TrashedBy)
	assert.Equal(t, a.userID, *trashed.TrashedBy)

	resp = a.do("GET", "/api/tasks/trash", a.user, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	trash := decode[pagedTasks](t, resp)
	assert.EqualValues(t, 1, trash.Total)
	assert.Equal(t, 1, trash.Page)

	resp = a.do("GET", "/api/tasks/my", a.user, nil)
	assert.Empty(t, decode[pagedTasks](t, resp).Tasks)

	resp = a.do("PUT", "/api/tasks/"+task.ID.String()+"/restore", a.user, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	restored := decode[model.Task](t, resp)
	assert.False(t, restored.IsTrashed)
	assert.Nil(t, restored.TrashedAt)
}

func TestDeleteTask_Secret(t *testing.T) {
	a := setupAPI(t)
	task := a.createTask(t, "Obsolete")
	path := "/api/tasks/" + task.ID.String() + "/permanent"

	resp := a.do("DELETE", path, a.manager, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Invalid delete password", decode[map[string]string](t, resp)["error"])

	resp = a.do("DELETE", path, a.manager, handler.DeleteRequest{Secret: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = a.do("DELETE", path, a.manager, handler.DeleteRequest{Secret: deleteSecret})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Task permanently deleted", decode[handler.MessageResponse](t, resp).Message)

	resp = a.do("GET", "/api/tasks/"+task.ID.String(), a.manager, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListMyTasks_Pagination(t *testing.T) {
	a := setupAPI(t)
	for i := 0; i < 12; i++ {
		a.createTask(t, "Task")
	}

	resp := a.do("GET", "/api/tasks/my?page=2", a.user, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	page := decode[pagedTasks](t, resp)
	assert.Len(t, page.Tasks, 2)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 2, page.TotalPages)
	assert.EqualValues(t, 12, page.Total)

	resp = a.do("GET", "/api/tasks/my?page=5&limit=5", a.user, nil)
	page = decode[pagedTasks](t, resp)
	assert.NotNil(t, page.Tasks)
	assert.Empty(t, page.Tasks)
}

func TestListCreatedTasks_ManagerOnly(t *testing.T) {
	a := setupAPI(t)
	a.createTask(t, "One")

	resp := a.do("GET", "/api/tasks/created", a.manager, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decode[[]model.Task](t, resp), 1)

	resp = a.do("GET", "/api/tasks/created", a.user, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestProjectLifecycle(t *testing.T) {
	a := setupAPI(t)

	resp := a.do("POST", "/api/projects", a.manager, gin.H{"name": "Apollo"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	project := decode[model.Project](t, resp)
	assert.Equal(t, model.ProjectActive, project.Status)

	resp = a.do("POST", "/api/projects", a.user, gin.H{"name": "Mine"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = a.do("PUT", "/api/projects/"+project.ID.String(), a.manager, gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = a.do("GET", "/api/projects", a.user, nil)
	assert.Empty(t, decode[[]model.Project](t, resp))
	resp = a.do("GET", "/api/projects", a.manager, nil)
	assert.Len(t, decode[[]model.Project](t, resp), 1)

	resp = a.do("PUT", "/api/projects/"+project.ID.String()+"/trash", a.manager, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp = a.do("GET", "/api/projects/trash", a.manager, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"projects"`)

	resp = a.do("PUT", "/api/projects/"+project.ID.String()+"/restore", a.manager, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.False(t, decode[model.Project](t, resp).IsTrashed)

	resp = a.do("DELETE", "/api/projects/"+project.ID.String()+"/permanent", a.manager, handler.DeleteRequest{Secret: deleteSecret})
	require.Equal(t, http.StatusOK, resp.Code)
	resp = a.do("PUT", "/api/projects/"+project.ID.String(), a.manager, gin.H{"name": "Gone"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Project not found", decode[map[string]string](t, resp)["error"])
}

func TestActivityRoutes(t *testing.T) {
	a := setupAPI(t)
	task := a.createTask(t, "Audit")
	a.do("PUT", "/api/tasks/"+task.ID.String(), a.user, gin.H{"status": "done"})

	resp := a.do("GET", "/api/activity", a.user, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	mine := decode[pagedLogs](t, resp)
	require.Len(t, mine.Logs, 1)
	assert.Equal(t, model.ActionUpdatedTask, mine.Logs[0].Action)

	resp = a.do("GET", "/api/activity", a.manager, nil)
	all := decode[pagedLogs](t, resp)
	assert.EqualValues(t, 2, all.Total)

	resp = a.do("GET", "/api/activity/user/"+a.userID.String(), a.manager, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decode[[]model.ActivityLog](t, resp), 1)

	resp = a.do("GET", "/api/activity/user/"+a.userID.String(), a.user, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	logID := mine.Logs[0].ID.String()
	resp = a.do("PUT", "/api/activity/"+logID+"/trash", a.user, nil)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = a.do("PUT", "/api/activity/"+logID+"/trash", a.manager, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp = a.do("GET", "/api/activity/trash", a.manager, nil)
	assert.EqualValues(t, 1, decode[pagedLogs](t, resp).Total)

	resp = a.do("PUT", "/api/activity/"+logID+"/restore", a.manager, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = a.do("DELETE", "/api/activity/"+logID+"/permanent", a.manager, handler.DeleteRequest{Secret: deleteSecret})
	require.Equal(t, http.StatusOK, resp.Code)
	resp = a.do("PUT", "/api/activity/"+logID+"/trash", a.manager, nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "Log not found", decode[map[string]string](t, resp)["error"])
}

func TestRoutes_RequireToken(t *testing.T) {
	a := setupAPI(t)

	req, _ := http.NewRequest("GET", "/api/tasks/my", nil)
	resp := httptest.NewRecorder()
	a.router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestListMyTasks_PopulatesReferences(t *testing.T) {
	a := setupAPI(t)
	require.NoError(t, a.db.Create(&model.User{
		ID: a.userID, Email: "ann@example.com", Name: "Ann", HashedPassword: "x", Role: model.RoleUser,
	}).Error)
	a.createTask(t, "Wire it")

	resp := a.do("GET", "/api/tasks/my", a.user, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Tasks []map[string]any `json:"tasks"`
		Limit int              `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Tasks, 1)
	assert.Equal(t, 10, body.Limit)

	item := body.Tasks[0]
	assert.Equal(t, a.userID.String(), item["assignedToId"])
	assignee, ok := item["assignedTo"].(map[string]any)
	require.True(t, ok, "assignedTo should be an object: %v", item["assignedTo"])
	assert.Equal(t, "Ann", assignee["name"])
	assert.Equal(t, "ann@example.com", assignee["email"])
	assert.Equal(t, "user", assignee["role"])
	assert.NotContains(t, assignee, "hashedPassword")

	// the manager never signed up, so there is nothing to populate
	assert.NotContains(t, item, "createdBy")
	assert.NotEmpty(t, item["createdById"])

	resp = a.do("GET", "/api/activity", a.manager, nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var logs struct {
		Logs []map[string]any `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &logs))
	require.Len(t, logs.Logs, 1)
	for _, entry := range logs.Logs {
		task, ok := entry["task"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Wire it", task["title"])
	}
}
