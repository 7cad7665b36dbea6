package credentialsevents

const (
	TopicName            = "credentials"
	connectStartedName   = TopicName + ".connect.started"
	connectCompletedName = TopicName + ".connect.completed"
	tokenRefreshedName   = TopicName + ".token.refreshed"
)

type ConnectStarted struct {
	ProviderName string
	SessionUID   string
	Scopes       string
}

func (e ConnectStarted) GetEventTypeName() string {
	return connectStartedName
}

func (e ConnectStarted) GetAggregateName() string {
	return e.SessionUID
}

type ConnectCompleted struct {
	ProviderName string
	SessionUID   string
}

func (e ConnectCompleted) GetEventTypeName() string {
	return connectCompletedName
}

func (e ConnectCompleted) GetAggregateName() string {
	return e.SessionUID
}

type TokenRefreshed struct {
	ProviderName string
	SessionUID   string
	UID          string
}

func (e TokenRefreshed) GetEventTypeName() string {
	return tokenRefreshedName
}

func (e TokenRefreshed) GetAggregateName() string {
	return e.UID
}
