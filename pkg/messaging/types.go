package messaging

// ChangeTopic names an exchange/queue pair, prefixed per country or "global".
type ChangeTopic string
