package http

import (
	"net/http"
	"strings"
)

// RouterConfig wires handlers and middleware into the HTTP surface.
// Authenticate guards every /api route except the auth endpoints;
// Middleware wraps the whole router (outermost first).
type RouterConfig struct {
	Auth         *AuthHandler
	Schedules    *ScheduleHandler
	Rooms        *RoomHandler
	Courses      *CourseHandler
	Catalog      *CatalogHandler
	Users        *UserHandler
	Authenticate func(http.Handler) http.Handler
	Middleware   []func(http.Handler) http.Handler
}

// NewRouter builds the full route table on the standard mux.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	guard := cfg.Authenticate
	if guard == nil {
		guard = func(next http.Handler) http.Handler { return next }
	}
	protected := func(fn http.HandlerFunc) http.HandlerFunc {
		return guard(fn).ServeHTTP
	}

	if cfg.Auth != nil {
		mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Login(w, r)
		})
		mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Refresh(w, r)
		})
		mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Auth.Logout(w, r)
		})
	}

	if cfg.Schedules != nil {
		mux.HandleFunc("/api/schedules", protected(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Schedules.List(w, r)
			case http.MethodPost:
				cfg.Schedules.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.HandleFunc("/api/schedules/", protected(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/api/schedules/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}

			head, tail, _ := strings.Cut(rest, "/")
			switch head {
			case "recurring":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Schedules.CreateRecurring(w, r)
			case "batch":
				switch {
				case tail == "status" && r.Method == http.MethodPut:
					cfg.Schedules.UpdateStatusBatch(w, r)
				case tail == "" && r.Method == http.MethodDelete:
					cfg.Schedules.DeleteBatch(w, r)
				default:
					methodNotAllowed(w, http.MethodPut, http.MethodDelete)
				}
			case "date":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Schedules.ListByDate(w, r, tail)
			case "user":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Schedules.ListByUser(w, r, tail)
			case "email":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Schedules.ListByEmail(w, r, tail)
			default:
				if tail == "status" {
					if r.Method != http.MethodPut {
						methodNotAllowed(w, http.MethodPut)
						return
					}
					cfg.Schedules.UpdateStatus(w, r, head)
					return
				}
				if tail != "" {
					http.NotFound(w, r)
					return
				}
				switch r.Method {
				case http.MethodGet:
					cfg.Schedules.Get(w, r, head)
				case http.MethodPut:
					cfg.Schedules.Update(w, r, head)
				case http.MethodDelete:
					cfg.Schedules.Delete(w, r, head)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
				}
			}
		}))
	}

	if cfg.Rooms != nil {
		mux.HandleFunc("/api/rooms", protected(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Rooms.List(w, r)
			case http.MethodPost:
				cfg.Rooms.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.HandleFunc("/api/rooms/", protected(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/api/rooms/")
			head, tail, _ := strings.Cut(rest, "/")
			if head == "" {
				http.NotFound(w, r)
				return
			}

			if head == "building" {
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Rooms.ListByBuilding(w, r, tail)
				return
			}
			if tail != "" {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Rooms.Get(w, r, head)
			case http.MethodPut:
				cfg.Rooms.Update(w, r, head)
			case http.MethodDelete:
				cfg.Rooms.Delete(w, r, head)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Courses != nil {
		mux.HandleFunc("/api/courses", protected(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Courses.List(w, r)
			case http.MethodPost:
				cfg.Courses.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.HandleFunc("/api/courses/", protected(func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/api/courses/")
			head, tail, _ := strings.Cut(rest, "/")
			if head == "" {
				http.NotFound(w, r)
				return
			}

			if head == "program" {
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Courses.ListByProgram(w, r, tail)
				return
			}
			if tail != "" {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Courses.Get(w, r, head)
			case http.MethodPut:
				cfg.Courses.Update(w, r, head)
			case http.MethodDelete:
				cfg.Courses.Delete(w, r, head)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	if cfg.Catalog != nil {
		registerCatalogRoutes(mux, cfg.Catalog, protected)
	}

	if cfg.Users != nil {
		mux.HandleFunc("/api/users", protected(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Users.List(w, r)
			case http.MethodPost:
				cfg.Users.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		}))
		mux.HandleFunc("/api/users/", protected(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/api/users/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet:
				cfg.Users.Get(w, r, id)
			case http.MethodPut:
				cfg.Users.Update(w, r, id)
			case http.MethodDelete:
				cfg.Users.Delete(w, r, id)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		}))
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	return handler
}

func registerCatalogRoutes(mux *http.ServeMux, catalog *CatalogHandler, protected func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/buildings", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			catalog.ListBuildings(w, r)
		case http.MethodPost:
			catalog.CreateBuilding(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	}))
	mux.HandleFunc("/api/buildings/", protected(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/buildings/")
		if id == "" || strings.Contains(id, "/") {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet:
			catalog.GetBuilding(w, r, id)
		case http.MethodPut:
			catalog.UpdateBuilding(w, r, id)
		case http.MethodDelete:
			catalog.DeleteBuilding(w, r, id)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
		}
	}))

	mux.HandleFunc("/api/departments", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			catalog.ListDepartments(w, r)
		case http.MethodPost:
			catalog.CreateDepartment(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	}))
	mux.HandleFunc("/api/departments/", protected(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/departments/")
		if id == "" || strings.Contains(id, "/") {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet:
			catalog.GetDepartment(w, r, id)
		case http.MethodPut:
			catalog.UpdateDepartment(w, r, id)
		case http.MethodDelete:
			catalog.DeleteDepartment(w, r, id)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
		}
	}))

	mux.HandleFunc("/api/programs", protected(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			catalog.ListPrograms(w, r)
		case http.MethodPost:
			catalog.CreateProgram(w, r)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	}))
	mux.HandleFunc("/api/programs/", protected(func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/api/programs/")
		head, tail, _ := strings.Cut(rest, "/")
		if head == "" {
			http.NotFound(w, r)
			return
		}

		if head == "department" {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			catalog.ListProgramsByDepartment(w, r, tail)
			return
		}
		if tail != "" {
			http.NotFound(w, r)
			return
		}
		switch r.Method {
		case http.MethodGet:
			catalog.GetProgram(w, r, head)
		case http.MethodPut:
			catalog.UpdateProgram(w, r, head)
		case http.MethodDelete:
			catalog.DeleteProgram(w, r, head)
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
		}
	}))
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
