package db

import "log"

// Closer is satisfied by both the KV and the SQL clients.
type Closer interface {
	Close() error
}

// CloseClient closes c and logs the outcome under name.
func CloseClient(name string, c Closer) error {
	if c == nil {
		log.Printf("[INFO] `%s` Nothing to Close", name)
		return nil
	}
	if err := c.Close(); err != nil {
		log.Printf("[WARN] Failed to Close `%s`: %v", name, err)
		return err
	}
	log.Printf("[INFO] `%s` Closed", name)
	return nil
}
