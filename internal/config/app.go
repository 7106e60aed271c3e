package config

type AppConfig struct {
	Server ServerConfig
	Battle BattleConfig
	Judge  JudgeConfig
	Log    LogConfig
}

func LoadApp() (AppConfig, error) {
	logCfg, err := LoadLog()
	if err != nil {
		return AppConfig{}, err
	}
	serverCfg, err := LoadServer()
	if err != nil {
		return AppConfig{}, err
	}
	battleCfg, err := LoadBattle()
	if err != nil {
		return AppConfig{}, err
	}
	judgeCfg, err := LoadJudge()
	if err != nil {
		return AppConfig{}, err
	}
	return AppConfig{
		Server: serverCfg,
		Battle: battleCfg,
		Judge:  judgeCfg,
		Log:    logCfg,
	}, nil
}
