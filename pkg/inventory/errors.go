package inventory

import "fmt"

// RemoteAPIError reports a failure while listing one account/region pair
type RemoteAPIError struct {
	AccountID string
	Region    string
	Err       error
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("account %s region %s: %v", e.AccountID, e.Region, e.Err)
}

func (e *RemoteAPIError) Unwrap() error {
	return e.Err
}
