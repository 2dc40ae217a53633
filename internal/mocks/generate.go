package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Provider --dir ../domain/storage --output domain/storage --outpkg storagemock --filename provider_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Patcher --dir ../domain/storage --output domain/storage --outpkg storagemock --filename patcher_mock.go
