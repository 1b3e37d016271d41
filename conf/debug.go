package conf

type DebugOpts struct {
	DryRunMail bool `json:"dry_run_mail"` // log outgoing mail instead of calling the mail API
}
