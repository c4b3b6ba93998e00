package mail

type SyncReportData struct {
	Contacts int
	Batches  int
	Took     string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
