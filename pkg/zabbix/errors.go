package zabbix

import "errors"

var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code from Zabbix API")
	ErrNotAuthenticated     = errors.New("not authenticated with Zabbix API")
	ErrEmptyLoginResult     = errors.New("empty result from user.login")
	ErrNoHostGroups         = errors.New("no host groups found in Zabbix")
)
