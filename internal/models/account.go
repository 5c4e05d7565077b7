package models

// AccountCredential holds the credentials used to reach one AWS account
type AccountCredential struct {
	AccountID   string
	AccountName string

	// Static keys. Either both keys or Profile must be set.
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// Shared config profile used when no static keys are given
	Profile string
}

// HasStaticKeys reports whether the credential carries an access key pair
func (a AccountCredential) HasStaticKeys() bool {
	return a.AccessKeyID != "" && a.SecretAccessKey != ""
}
