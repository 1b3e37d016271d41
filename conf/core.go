package conf

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/zeptools/gw-cardpress/db"
	"github.com/zeptools/gw-cardpress/db/kvdb"
	"github.com/zeptools/gw-cardpress/db/sqldb"
	"github.com/zeptools/gw-cardpress/schedjobs"
	"github.com/zeptools/gw-cardpress/svc"
	"github.com/zeptools/gw-cardpress/throttle"
	"github.com/zeptools/gw-cardpress/tpl"
	"github.com/zeptools/gw-cardpress/uds"
	"github.com/zeptools/gw-cardpress/web"
	"github.com/zeptools/gw-cardpress/web/session"
)

// Core - common config
// B = Throttle BucketID Type _ e.g. string (client IP)
type Core[B comparable] struct {
	AppName   string    `json:"app_name"`
	Listen    string    `json:"listen"`      // HTTP Server Listen IP:PORT Address
	Host      string    `json:"host"`        // public base url of the card builder
	UDSPath   string    `json:"uds_path"`    // admin socket, relative to AppRoot unless absolute
	DebugOpts DebugOpts `json:"debug_opts"`  // Debug Options
	HTTPTimeS int       `json:"http_time_s"` // outbound http timeout, default 30

	AppRoot    string             `json:"-"` // Filled from compiled paths
	RootCtx    context.Context    `json:"-"` // Global Context with RootCancel
	RootCancel context.CancelFunc `json:"-"` // CancelFunc for RootCtx

	UDSService          *uds.Service             `json:"-"` // PrepareUDSService
	JobScheduler        *schedjobs.Scheduler     `json:"-"` // PrepareJobScheduler
	WebService          *web.Service             `json:"-"` // PrepareWebService
	ThrottleBucketStore *throttle.BucketStore[B] `json:"-"` // PrepareThrottleBucketStore
	BackendHttpClient   *http.Client             `json:"-"` // for requests to external apis
	KVDBConf            kvdb.Conf                `json:"-"` // loadKVDBConf
	BackendKVDBClient   kvdb.Client              `json:"-"` // prepareKVDBClient
	SQLDBConfs          map[string]*sqldb.Conf   `json:"-"` // loadSQLDBConfs
	BackendSQLDBClients map[string]sqldb.Client  `json:"-"` // prepareSQLDBClients
	WebSessionManager   *session.Manager         `json:"-"` // PrepareWebSessions
	HTMLTemplateStore   *tpl.HTMLTemplateStore   `json:"-"` // PrepareHTMLTemplateStore
	Cards               *Cards                   `json:"-"` // PrepareCards
	APIs                APIs                     `json:"-"` // PrepareMailer, PrepareCloudinary

	tool     bool          // set by ToolInit
	services []svc.Service // Services to Manage
	done     chan error
}

// BaseInit - 1st step for initialization
// 1. set AppRoot
// 2. load config/.core.json file
// 3. prepare base fields
// 4. Start ShutdownSignalListener
func (c *Core[B]) BaseInit(appRoot string, rootCtx context.Context, rootCancel context.CancelFunc) error {
	c.AppRoot = appRoot
	if err := c.loadJSON(".core.json", c); err != nil {
		return err
	}
	if c.AppName == "" {
		c.AppName = "cardpress"
	}
	c.RootCtx = rootCtx
	c.RootCancel = rootCancel
	c.prepareDefaultFeatures()
	c.startShutdownSignalListener()
	return nil
}

// ToolInit prepares a Core for one-shot commands: .core.json is optional, no signal listener.
func (c *Core[B]) ToolInit(appRoot string, ctx context.Context) error {
	c.AppRoot = appRoot
	if _, err := c.loadOptionalJSON(".core.json", c); err != nil {
		return err
	}
	if c.AppName == "" {
		c.AppName = "cardpress"
	}
	c.RootCtx = ctx
	c.RootCancel = func() {}
	c.tool = true
	c.prepareDefaultFeatures()
	return nil
}

func (c *Core[B]) prepareDefaultFeatures() {
	timeout := 30 * time.Second
	if c.HTTPTimeS > 0 {
		timeout = time.Duration(c.HTTPTimeS) * time.Second
	}
	c.BackendHttpClient = &http.Client{Timeout: timeout}
}

// ConfigPath joins name onto <AppRoot>/config
func (c *Core[B]) ConfigPath(name string) string {
	return filepath.Join(c.AppRoot, "config", name)
}

// RootPath resolves p against AppRoot unless it is absolute
func (c *Core[B]) RootPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.AppRoot, p)
}

func (c *Core[B]) loadJSON(name string, dst any) error {
	data, err := os.ReadFile(c.ConfigPath(name))
	if err != nil {
		return err
	}
	if err = json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("config %s: %w", name, err)
	}
	return nil
}

// loadOptionalJSON leaves dst untouched when the file does not exist
func (c *Core[B]) loadOptionalJSON(name string, dst any) (bool, error) {
	err := c.loadJSON(name, dst)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

func (c *Core[B]) AddService(s svc.Service) {
	log.Printf("[INFO] adding service: %s", s.Name())
	c.services = append(c.services, s)
	log.Printf("[INFO] total services: %d", len(c.services))
}

func (c *Core[B]) StartServices() error {
	c.done = make(chan error, len(c.services))
	for _, s := range c.services {
		err := s.Start()
		if err != nil {
			return err
		}
		go func(s svc.Service) {
			err := <-s.Done()
			c.done <- err
		}(s)
	}
	return nil
}

func (c *Core[B]) WaitServicesDone() error {
	for i := 0; i < len(c.services); i++ {
		if err := <-c.done; err != nil {
			return err
		}
	}
	return nil
}

func (c *Core[B]) StopServices() {
	for _, s := range c.services {
		s.Stop()
	}
}

var once sync.Once

func (c *Core[B]) startShutdownSignalListener() {
	once.Do(func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigs
			log.Printf("[INFO] got signal [%s]. shutting down app [%s] ...", sig, c.AppName)
			c.RootCancel() // broadcast to all child services via Context.Done()
		}()
	})
	log.Printf("[INFO][CORE] shutdown signal listener started")
}

func (c *Core[B]) PrepareJobScheduler() {
	c.JobScheduler = schedjobs.NewScheduler(c.RootCtx)
	c.AddService(c.JobScheduler)
}

func (c *Core[B]) PrepareUDSService(cmdStore uds.CommandStore) {
	sockPath := c.RootPath(c.UDSPath)
	if sockPath == "" {
		sockPath = filepath.Join(c.AppRoot, c.AppName+".sock")
	}
	c.UDSService = uds.NewService(c.RootCtx, sockPath, cmdStore)
	c.AddService(c.UDSService)
}

func (c *Core[B]) PrepareWebService(router http.Handler) {
	c.WebService = web.NewService(c.RootCtx, c.Listen, router)
	c.AddService(c.WebService)
}

func (c *Core[B]) PrepareHTMLTemplateStore() error {
	c.HTMLTemplateStore = tpl.NewHTMLTemplateStore()
	return c.HTMLTemplateStore.LoadBaseTemplates(
		filepath.Join(c.AppRoot, "templates", "html"),
	)
}

// PrepareWebSessions prepares WebSessionManager
// Prerequisite: BackendKVDBClient
func (c *Core[B]) PrepareWebSessions() error {
	if c.BackendKVDBClient == nil {
		return fmt.Errorf("backend KVDB client not ready")
	}
	var sc session.Conf
	if err := c.loadJSON(".web-session.json", &sc); err != nil {
		return err
	}
	if err := sc.Prepare(); err != nil {
		return err
	}
	c.WebSessionManager = session.NewManager(&sc, c.AppName, c.BackendKVDBClient)
	return nil
}

func (c *Core[B]) ResourceCleanUp() {
	log.Println("[INFO] App Resource Cleaning Up...")
	if c.BackendKVDBClient != nil {
		_ = db.CloseClient("kv:"+c.BackendKVDBClient.GetConf().Type, c.BackendKVDBClient)
	}
	for name, sqlDBClient := range c.BackendSQLDBClients {
		_ = db.CloseClient(fmt.Sprintf("sql:%s:%s", sqlDBClient.GetConf().Type, name), sqlDBClient)
	}
	log.Println("[INFO] App Resource Cleanup Complete")
}
