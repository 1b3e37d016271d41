package sqldb

type Conf struct {
	Type string `json:"type"` // mysql, pgsql
	Host string `json:"host"`
	Port int    `json:"port"`
	User string `json:"user"`
	PW   string `json:"pw"`
	DB   string `json:"db"`
	TZ   string `json:"tz"`  // Connection Timezone
	DSN  string `json:"dsn"` // To Overwrite Default DSN

	MaxConns        int `json:"max_conns"`         // default 10
	ConnLifetimeSec int `json:"conn_lifetime_sec"` // default 180
}

func (c *Conf) PoolSize() int {
	if c.MaxConns > 0 {
		return c.MaxConns
	}
	return 10
}

func (c *Conf) ConnLifetime() int {
	if c.ConnLifetimeSec > 0 {
		return c.ConnLifetimeSec
	}
	return 180
}
