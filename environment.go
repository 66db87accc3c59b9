package feature

// EnvironmentInfo reports the deployment environment of the process.
type EnvironmentInfo interface {
	IsProduction() bool
}

// Environment is an application environment name such as "production".
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// IsProduction accepts both "production" and the short "prod".
func (e Environment) IsProduction() bool {
	return e == Production || e == "prod"
}

// environmentTag is the environment name announced to the provider.
func environmentTag(env EnvironmentInfo) string {
	if env.IsProduction() {
		return string(Production)
	}
	return string(Development)
}
