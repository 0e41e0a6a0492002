// @title           MyPhysioFriend API
// @version         1.0
// @description     Appointment booking backend for the patient, doctor and admin consoles.
// @BasePath        /
// @securityDefinitions.apikey  AdminToken
// @in                          header
// @name                        atoken
// @securityDefinitions.apikey  DoctorToken
// @in                          header
// @name                        dtoken
// @securityDefinitions.apikey  UserToken
// @in                          header
// @name                        token
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import "github.com/ariebrainware/physiofriend-api/cli"

func main() {
	cli.Execute()
}
